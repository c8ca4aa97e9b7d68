package global

import (
	"regexp"
	"time"
)

const (
	EntityName = "sipalert"
	UserAgent  = "sipalert/1.0"

	BufferSize int = 4096

	SipPort int = 5060
	RTPPort int = 5070

	PacketizationTime int = 20    // ms
	PayloadSize       int = 160   // bytes
	SamplingRate          = 8000  // Hz
	PcmSamplingRate       = 16000 // Hz
	FrameSamples      int = 320   // 20 ms at PcmSamplingRate

	QueueCapacity int = 32

	RegistrationTries   int           = 15
	RegistrationTryWait time.Duration = time.Second
	RegistrationExpires int           = 1800 // s
	EventWait           time.Duration = 10 * time.Millisecond
	DTMFDuration        int           = 250 // ms
	DTMFEchoDelay       time.Duration = time.Second

	T1Timer        int    = 500 // ms
	T2Timer        int    = 4000
	TimerBFactor   int    = 64
	SipVersion     string = "SIP/2.0"
	MagicCookie    string = "z9hG4bK"
	AllowedMethods string = "INVITE, ACK, CANCEL, BYE, OPTIONS, INFO"
	AlertInfo      string = "<urn:alert:source:external>"
	MaxForwards    int    = 70
)

var (
	MandatoryHeaders = [...]string{"From", "To", "Call-ID", "CSeq", "Via"}

	// =================================================================
	// Field Regular Expressions

	DicFieldRegEx = map[FieldPattern]*regexp.Regexp{
		ExpiresParameter:         regexp.MustCompile(`(?i)expires\s*=\s*(\d+)`),
		RequestStartLinePattern:  regexp.MustCompile(`(?i)^\s*([a-z]+)\s+((?:\w+):(?:(?:[^@]+)@)?(?:[^@]+))\s+(SIP/2\.0)$`),
		ResponseStartLinePattern: regexp.MustCompile(`(?i)^\s*(SIP/2\.0)\s+(\d{3})(?:\s+([^,;]+)([,;].+)?)?$`),
		ViaBranchPattern:         regexp.MustCompile(`(?i);branch\s*=\s*([^;,]+)`),
		FullHeader:               regexp.MustCompile(`(?i)^\s*([^:]+?)\s*:\s*(.*)$`),
		URIFull:                  regexp.MustCompile(`(?i)((?:sip|sips|tel):[^>;]+)`),
		URIUserHost:              regexp.MustCompile(`(?i)^(?:sip|sips):(?:([^@:;]+)@)?([\w\-\.]+)(?::(\d+))?`),
		CSeqHeader:               regexp.MustCompile(`(?i)(\d+)\s+([a-z]+)`),
		SDPRtpMapLine:            regexp.MustCompile(`(?i)^a=rtpmap:\s*(\d{1,3})\s+([\w\-\.]+)/(\d+)(?:/(\d+))?\s*$`),
		SignalDTMF:               regexp.MustCompile(`(?is)Signal=(.)`),
		Tag:                      regexp.MustCompile(`(?i);tag=([^;]+)`),
	}

	// =================================================================
	// Request Headers

	RequestHeaderCHs = []string{"Via", "Route", "From", "To", "Call-ID", "CSeq", "Contact", "Max-Forwards", "Supported", "Allow", "Date", "User-Agent", "Content-Type"}

	// returns proper case for headers
	DicRequestHeaders = map[Method][]string{
		INVITE:   append(RequestHeaderCHs, "Subject", "Alert-Info", "Authorization", "Proxy-Authorization"),
		ACK:      RequestHeaderCHs,
		BYE:      append(RequestHeaderCHs, "Reason"),
		CANCEL:   append(RequestHeaderCHs, "Reason"),
		INFO:     RequestHeaderCHs,
		REGISTER: append(RequestHeaderCHs, "Expires", "Authorization", "Proxy-Authorization"),
		OPTIONS:  RequestHeaderCHs,
	}

	ResponseHeaders = []string{"Via", "Record-Route", "From", "To", "Call-ID", "CSeq", "Contact", "Expires", "Supported", "Allow", "Server", "Date", "Warning", "WWW-Authenticate", "Proxy-Authenticate", "Content-Type"}

	// =================================================================
	// Headers

	HeaderStringtoEnum = map[string]HeaderEnum{
		"Accept":              Accept,
		"Alert-Info":          Alert_Info,
		"Allow":               Allow,
		"Authorization":       Authorization,
		"Call-ID":             Call_ID,
		"Contact":             Contact,
		"Content-Length":      Content_Length,
		"Content-Type":        Content_Type,
		"CSeq":                CSeq,
		"Date":                Date,
		"Expires":             Expires,
		"From":                From,
		"Max-Forwards":        Max_Forwards,
		"Proxy-Authenticate":  Proxy_Authenticate,
		"Proxy-Authorization": Proxy_Authorization,
		"Reason":              Reason,
		"Record-Route":        Record_Route,
		"Route":               Route,
		"Server":              Server,
		"Subject":             Subject,
		"Supported":           Supported,
		"To":                  To,
		"User-Agent":          User_Agent,
		"Via":                 Via,
		"Warning":             Warning,
		"WWW-Authenticate":    WWW_Authenticate,
	}

	HeaderEnumToString = func() map[HeaderEnum]string {
		m := make(map[HeaderEnum]string, len(HeaderStringtoEnum))
		for k, v := range HeaderStringtoEnum {
			m[v] = k
		}
		return m
	}()

	// compact header forms
	CompactHeaders = map[string]string{
		"i": "call-id",
		"m": "contact",
		"l": "content-length",
		"c": "content-type",
		"f": "from",
		"s": "subject",
		"k": "supported",
		"t": "to",
		"v": "via",
	}
)
