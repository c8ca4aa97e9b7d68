package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"braces.dev/errtrace"
	"github.com/urfave/cli/v3"

	"sipalert/config"
	"sipalert/global"
	"sipalert/media"
	"sipalert/rtp"
	"sipalert/scheduler"
	"sipalert/session"
	"sipalert/sip"
	"sipalert/system"
	"sipalert/webserver"
)

func main() {
	cmd := &cli.Command{
		Name:  global.EntityName,
		Usage: "register, place one alert call and play a prompt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   fmt.Sprintf("INI file, searched in %v when empty", config.SearchPaths),
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		system.LogError(system.LTSystem, err.Error())
		os.Exit(1)
	}
}

func greeting() {
	system.LogInfo(system.LTSystem, fmt.Sprintf("Welcome to %s", global.UserAgent))
}

// alerter plays the prompt twice once the callee answers, echoes the
// digits it receives and stops the process when the call ends.
type alerter struct {
	session.NopHandler
	prompt string
	stop   context.CancelFunc
}

func (a *alerter) OnAnswered(s *session.Session) {
	a.NopHandler.OnAnswered(s)
	for range 2 {
		if err := s.Play(a.prompt); err != nil {
			system.LogError(system.LTPlayback, err.Error())
		}
	}
}

func (a *alerter) OnDTMF(s *session.Session, digit byte) {
	s.SendDTMFAfter(global.DTMFEchoDelay, digit)
}

func (a *alerter) OnTerminate(*session.Session) {
	system.LogInfo(system.LTSessionState, "Call terminated")
	a.stop()
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return errtrace.Wrap(err)
	}
	if err := system.SetupLogger(cfg.LogLevel, cfg.LogDev); err != nil {
		return global.NewError(global.ErrConfig, err)
	}
	greeting()

	lib, err := media.LoadLibrary(cfg.Media.Directory)
	if err != nil {
		return errtrace.Wrap(err)
	}
	prompt, ok := lib.Resolve(cfg.Media.Prompt)
	if !ok {
		return global.NewError(global.ErrConfig, "prompt %s not found in %s", cfg.Media.Prompt, cfg.Media.Directory)
	}

	ua, err := sip.NewUserAgent(sip.Config{
		ListenIP:  cfg.SIP.ListenIP,
		Port:      cfg.SIP.Port,
		AOR:       cfg.Registration.URI,
		Registrar: cfg.Registration.Registrar,
		Login:     cfg.Registration.Login,
		Password:  cfg.Registration.Password,
	})
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer ua.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	var monitor *webserver.Server
	rtps := rtp.NewSession(rtp.UDPDialer{LocalIP: net.ParseIP(ua.LocalIP()), LocalPort: cfg.Media.RTPPort})
	sess := session.New(ua, rtps, media.NewQueue(global.QueueCapacity), session.Options{
		RTPPort:  cfg.Media.RTPPort,
		Wideband: cfg.Media.Wideband,
		Handler:  &alerter{prompt: prompt, stop: stop},
		Notify: func(n session.Notification) {
			if monitor != nil {
				monitor.Publish(n)
			}
		},
	})

	if cfg.Monitor != "" {
		monitor = webserver.New(sess)
		if err := monitor.Start(cfg.Monitor); err != nil {
			return errtrace.Wrap(err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := monitor.Shutdown(sctx); err != nil {
				system.LogWarning(system.LTWebserver, err.Error())
			}
		}()
	}

	if err := sess.Register(); err != nil {
		return errtrace.Wrap(err)
	}
	if err := sess.WaitRegistered(ctx); err != nil {
		sess.Shutdown()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return errtrace.Wrap(err)
	}
	if err := sess.Call(cfg.Alert.Destination, cfg.Alert.Name); err != nil {
		sess.Shutdown()
		return errtrace.Wrap(err)
	}

	if err := scheduler.Run(ctx, ua, sess); err != nil {
		return errtrace.Wrap(err)
	}
	system.LogInfo(system.LTSystem, "Bye")
	return nil
}
