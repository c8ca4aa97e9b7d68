package guid

import (
	"strings"

	"github.com/google/uuid"

	"sipalert/global"
)

func hex32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func NewCallID() string {
	return uuid.NewString()
}

func NewViaBranch() string {
	return global.MagicCookie + hex32()[:16]
}

func NewTag() string {
	return hex32()[:12]
}
