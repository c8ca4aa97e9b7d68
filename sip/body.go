package sip

import (
	"sipalert/global"
)

// MessageBody holds a single-part body. Multipart bodies are kept as Unknown.
type MessageBody struct {
	Type        global.BodyType
	ContentType string
	Bytes       []byte
}

func EmptyBody() MessageBody {
	return MessageBody{Type: global.None}
}

func NewMessageBody(contentType string, bytes []byte) MessageBody {
	if len(bytes) == 0 {
		return EmptyBody()
	}
	return MessageBody{Type: global.GetBodyType(contentType), ContentType: contentType, Bytes: bytes}
}

func NewMessageSDPBody(sdpbytes []byte) MessageBody {
	return NewMessageBody(global.SDP.ContentType(), sdpbytes)
}

// ===============================================================

func (messagebody *MessageBody) WithNoBody() bool {
	return messagebody == nil || len(messagebody.Bytes) == 0
}

func (messagebody *MessageBody) ContainsSDP() bool {
	return !messagebody.WithNoBody() && messagebody.Type == global.SDP
}

func (messagebody *MessageBody) IsDTMFRelay() bool {
	return !messagebody.WithNoBody() && messagebody.Type == global.DTMFRelay
}

func (messagebody *MessageBody) ContentLength() int {
	if messagebody == nil {
		return 0
	}
	return len(messagebody.Bytes)
}
