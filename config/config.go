package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"braces.dev/errtrace"
	"gopkg.in/ini.v1"

	"sipalert/global"
	"sipalert/system"
)

// Locations searched when no explicit path is given.
var SearchPaths = []string{"/etc/sipalert.ini", "./sipalert.ini"}

type Registration struct {
	URI       string
	Registrar string
	Login     string
	Password  string
}

type Alert struct {
	Destination string
	Name        string
}

type SIP struct {
	ListenIP string
	Port     int
}

type Media struct {
	Directory string
	Prompt    string
	RTPPort   int
	Wideband  bool
}

type Config struct {
	Registration Registration
	Alert        Alert
	SIP          SIP
	Media        Media
	Monitor      string
	LogLevel     string
	LogDev       bool
	Path         string
}

var (
	registrationKeys = []string{"uri", "registrar", "login", "password"}
	alertKeys        = []string{"destination", "name"}
)

// Find returns path if set, otherwise the first existing search path.
func Find(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, p := range SearchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", global.NewError(global.ErrConfig, "no configuration file found in %v", SearchPaths)
}

func Load(path string) (*Config, error) {
	p, err := Find(path)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, global.NewError(global.ErrConfig, "file %s not found", p)
		}
		return nil, global.NewError(global.ErrConfig, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	cfg.Path = p
	system.LogInfo(system.LTConfiguration, "Loaded configuration from "+p)
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, global.NewError(global.ErrConfig, err)
	}

	reg := file.Section("registration")
	if err := checkKeys(reg, registrationKeys); err != nil {
		return nil, errtrace.Wrap(err)
	}
	alert := file.Section("alert")
	if err := checkKeys(alert, alertKeys); err != nil {
		return nil, errtrace.Wrap(err)
	}

	cfg := &Config{
		Registration: Registration{
			URI:       reg.Key("uri").String(),
			Registrar: reg.Key("registrar").String(),
			Login:     reg.Key("login").String(),
			Password:  reg.Key("password").String(),
		},
		Alert: Alert{
			Destination: alert.Key("destination").String(),
			Name:        alert.Key("name").MustString("alert"),
		},
	}
	for _, k := range registrationKeys {
		if reg.Key(k).String() == "" {
			return nil, global.NewError(global.ErrConfig, "missing [registration] %s", k)
		}
	}
	if cfg.Alert.Destination == "" {
		return nil, global.NewError(global.ErrConfig, "missing [alert] destination")
	}

	sip := file.Section("sip")
	cfg.SIP.ListenIP = sip.Key("listen_ip").String()
	cfg.SIP.Port = sip.Key("port").MustInt(global.SipPort)

	media := file.Section("media")
	cfg.Media.Directory = media.Key("directory").MustString("./media")
	cfg.Media.Prompt = media.Key("prompt").MustString("test.ogg")
	cfg.Media.RTPPort = media.Key("rtp_port").MustInt(global.RTPPort)
	cfg.Media.Wideband = media.Key("wideband").MustBool(false)

	cfg.Monitor = file.Section("monitor").Key("listen").String()

	lg := file.Section("log")
	cfg.LogLevel = lg.Key("level").MustString("info")
	cfg.LogDev = lg.Key("dev").MustBool(false)

	if cfg.SIP.Port <= 0 || cfg.SIP.Port > 65535 {
		return nil, global.NewError(global.ErrConfig, "invalid [sip] port %d", cfg.SIP.Port)
	}
	if cfg.Media.RTPPort <= 0 || cfg.Media.RTPPort > 65535 {
		return nil, global.NewError(global.ErrConfig, "invalid [media] rtp_port %d", cfg.Media.RTPPort)
	}
	return cfg, nil
}

func checkKeys(sec *ini.Section, allowed []string) error {
	for _, k := range sec.Keys() {
		if !slices.Contains(allowed, k.Name()) {
			return global.NewError(global.ErrConfig, "unknown key [%s] %s", sec.Name(), k.Name())
		}
	}
	return nil
}
