package global

// Method is a SIP request method. ReINVITE is an in-dialog INVITE; it shares
// the INVITE wire name.
type Method int

const (
	UNKNOWN Method = iota
	INVITE
	ReINVITE
	ACK
	CANCEL
	BYE
	OPTIONS
	INFO
	REGISTER
	PRACK
	UPDATE
	NOTIFY
	SUBSCRIBE
	REFER
	MESSAGE
)

var methodNames = [...]string{
	UNKNOWN:   "UNKNOWN",
	INVITE:    "INVITE",
	ReINVITE:  "INVITE",
	ACK:       "ACK",
	CANCEL:    "CANCEL",
	BYE:       "BYE",
	OPTIONS:   "OPTIONS",
	INFO:      "INFO",
	REGISTER:  "REGISTER",
	PRACK:     "PRACK",
	UPDATE:    "UPDATE",
	NOTIFY:    "NOTIFY",
	SUBSCRIBE: "SUBSCRIBE",
	REFER:     "REFER",
	MESSAGE:   "MESSAGE",
}

func (m Method) String() string {
	return methodNames[m]
}

// MethodFromName maps an upper case wire name to its Method. INVITE never
// yields ReINVITE; the parser decides that from the dialog tags.
func MethodFromName(nm string) Method {
	for m, name := range methodNames {
		if Method(m) != UNKNOWN && name == nm {
			return Method(m)
		}
	}
	return UNKNOWN
}

// RequiresACK reports whether a final response to m is acknowledged.
func (m Method) RequiresACK() bool {
	return m == INVITE || m == ReINVITE
}

// BodyType classifies a message body by its Content-Type.
type BodyType int

const (
	None BodyType = iota
	SDP
	DTMF
	DTMFRelay
	AnyXML
	Unknown
)

var bodyTypes = [...]struct{ name, mime string }{
	None:      {"None", ""},
	SDP:       {"SDP", "application/sdp"},
	DTMF:      {"DTMF", "application/dtmf"},
	DTMFRelay: {"DTMFRelay", "application/dtmf-relay"},
	AnyXML:    {"AnyXML", "+xml"},
	Unknown:   {"Unknown", ""},
}

func (bt BodyType) String() string {
	return bodyTypes[bt].name
}

// ContentType returns the media type sent for bt.
func (bt BodyType) ContentType() string {
	return bodyTypes[bt].mime
}

type Direction int

const (
	INBOUND Direction = iota
	OUTBOUND
)

func (d Direction) String() string {
	if d == OUTBOUND {
		return "OUTBOUND"
	}
	return "INBOUND"
}

type MessageType int

const (
	REQUEST MessageType = iota
	RESPONSE
	INVALID
)

func (mt MessageType) String() string {
	return [...]string{"REQUEST", "RESPONSE", "INVALID"}[mt]
}

// FieldPattern names a regular expression in DicFieldRegEx.
type FieldPattern int

const (
	RequestStartLinePattern FieldPattern = iota
	ResponseStartLinePattern
	ViaBranchPattern
	FullHeader
	URIFull
	URIUserHost
	CSeqHeader
	SDPRtpMapLine
	SignalDTMF
	Tag
	ExpiresParameter
)

// HeaderEnum names the headers the agent reads or writes.
type HeaderEnum int

// revive:disable:var-naming
const (
	Accept HeaderEnum = iota
	Alert_Info
	Allow
	Authorization
	Call_ID
	Contact
	Content_Length
	Content_Type
	CSeq
	Date
	Expires
	From
	Max_Forwards
	Proxy_Authenticate
	Proxy_Authorization
	Reason
	Record_Route
	Route
	Server
	Subject
	Supported
	To
	User_Agent
	Via
	Warning
	WWW_Authenticate
)

// revive:enable:var-naming
