package sip

import (
	"maps"
	"slices"

	"sipalert/global"
)

// SipHeaders keeps header values keyed by lower case full header name.
// Compact forms are expanded on every access.
type SipHeaders struct {
	values map[string][]string
}

// NewHeaders returns an empty header set. Outbound messages pass
// withDefaults to carry User-Agent and Allow.
func NewHeaders(withDefaults bool) *SipHeaders {
	h := &SipHeaders{values: make(map[string][]string)}
	if withDefaults {
		h.AddHeader(global.User_Agent, global.UserAgent)
		h.AddHeader(global.Allow, global.AllowedMethods)
	}
	return h
}

func key(name string) string {
	return global.ExpandCompactHeader(name)
}

// Names returns the lower case header names in order.
func (h *SipHeaders) Names() []string {
	return slices.Sorted(maps.Keys(h.values))
}

func (h *SipHeaders) HeaderExists(name string) bool {
	_, ok := h.values[key(name)]
	return ok
}

func (h *SipHeaders) HeaderCount(name string) int {
	return len(h.values[key(name)])
}

func (h *SipHeaders) Add(name, value string) {
	k := key(name)
	h.values[k] = append(h.values[k], value)
}

func (h *SipHeaders) AddHeader(he global.HeaderEnum, value string) {
	h.Add(he.String(), value)
}

func (h *SipHeaders) AddHeaderValues(he global.HeaderEnum, values []string) {
	if len(values) == 0 {
		return
	}
	k := he.LowerCaseString()
	h.values[k] = append(h.values[k], values...)
}

func (h *SipHeaders) SetHeader(he global.HeaderEnum, value string) {
	h.values[he.LowerCaseString()] = []string{value}
}

// Values returns every value of name, nil when absent.
func (h *SipHeaders) Values(name string) []string {
	return h.values[key(name)]
}

func (h *SipHeaders) HeaderValues(he global.HeaderEnum) []string {
	return h.values[he.LowerCaseString()]
}

// ValueHeader returns the first value of he or "".
func (h *SipHeaders) ValueHeader(he global.HeaderEnum) string {
	if v := h.HeaderValues(he); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (h *SipHeaders) Delete(name string) {
	delete(h.values, key(name))
}

// MissingMandatory returns the first mandatory header absent from h.
func (h *SipHeaders) MissingMandatory() (string, bool) {
	for _, name := range global.MandatoryHeaders {
		if !h.HeaderExists(name) {
			return name, true
		}
	}
	return "", false
}
