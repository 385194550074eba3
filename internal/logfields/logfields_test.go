package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Device", KeyDevice, "Ticwatch E", Device("Ticwatch E")},
		{"Serial", KeySerial, "M6600TB1234F", Serial("M6600TB1234F")},
		{"SessionID", KeySessionID, "abc", SessionID("abc")},
		{"State", KeyState, "Executing", State("Executing")},
		{"Command", KeyCommand, "getprop ro.serialno", Command("getprop ro.serialno")},
		{"Package", KeyPackage, "com.example", Package("com.example")},
		{"Action", KeyAction, "disable", Action("disable")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.attrKey, tc.attr.Key)
			assert.Equal(t, tc.attrVal, tc.attr.Value.String())
		})
	}
}

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
