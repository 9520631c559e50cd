package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "Email", want: "email"},
		{in: "NewPassword", want: "new_password"},
		{in: "ConfirmPassword", want: "confirm_password"},
		{in: "SourceIP", want: "source_ip"},
		{in: "DBConn", want: "db_conn"},
		{in: "HTTPServer", want: "http_server"},
		{in: "Base64Value", want: "base64_value"},
		{in: "already_snake", want: "already_snake"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldKey(tt.in))
		})
	}
}
