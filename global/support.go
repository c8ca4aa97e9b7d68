package global

import (
	"strings"

	"sipalert/system"
)

func (he HeaderEnum) LowerCaseString() string {
	h := HeaderEnumToString[he]
	return system.ASCIIToLower(h)
}

func (he HeaderEnum) String() string {
	return HeaderEnumToString[he]
}

// =====================================================

func RMatch(s string, rgxfp FieldPattern, mtch *[]string) bool {
	if s == "" {
		return false
	}
	*mtch = DicFieldRegEx[rgxfp].FindStringSubmatch(s)
	return *mtch != nil
}

func GetBodyType(contentType string) BodyType {
	contentType = system.ASCIIToLower(system.SplitHeaderParams(contentType)[system.HeaderValueKey])
	for bt := SDP; bt < AnyXML; bt++ {
		if bt.ContentType() == contentType {
			return bt
		}
	}
	if strings.HasSuffix(contentType, "+xml") || strings.HasSuffix(contentType, "/xml") {
		return AnyXML
	}
	return Unknown
}

func HeaderCase(h string) string {
	h = system.ASCIIToLower(h)
	for k := range HeaderStringtoEnum {
		if system.ASCIIToLower(k) == h {
			return k
		}
	}
	return system.ASCIIPascal(h)
}

// ExpandCompactHeader returns the lower case full name of a compact header form.
func ExpandCompactHeader(h string) string {
	h = system.ASCIIToLower(h)
	if full, ok := CompactHeaders[h]; ok {
		return full
	}
	return h
}

// ReasonPhrase returns the phrase sent with status code sc, falling back to
// the phrase of its class.
func ReasonPhrase(sc int) string {
	switch sc {
	case 100:
		return "Trying"
	case 180:
		return "Ringing"
	case 181:
		return "Call Is Being Forwarded"
	case 182:
		return "Queued"
	case 183:
		return "Session Progress"
	case 200:
		return "OK"
	case 202:
		return "Accepted"
	case 300:
		return "Multiple Choices"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Moved Temporarily"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 407:
		return "Proxy Authentication Required"
	case 408:
		return "Request Timeout"
	case 415:
		return "Unsupported Media Type"
	case 480:
		return "Temporarily Unavailable"
	case 481:
		return "Call/Transaction Does Not Exist"
	case 486:
		return "Busy Here"
	case 487:
		return "Request Terminated"
	case 488:
		return "Not Acceptable Here"
	case 491:
		return "Request Pending"
	case 500:
		return "Server Internal Error"
	case 501:
		return "Not Implemented"
	case 503:
		return "Service Unavailable"
	case 600:
		return "Busy Everywhere"
	case 603:
		return "Decline"
	case 604:
		return "Does Not Exist Anywhere"
	case 606:
		return "Not Acceptable"
	}
	if sc >= 100 && sc < 700 && sc%100 != 0 {
		return ReasonPhrase(sc / 100 * 100)
	}
	return ""
}
