package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelsup-backend-go/internal/models"
)

func testConfig() Config {
	return Config{Host: "sandbox.smtp.mailtrap.io", Port: "2525", User: "u", Pass: "p", Sender: "noreply@wheelsup.app"}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Sender = ""
	_, err = New(cfg)
	assert.Error(t, err)

	_, err = New(testConfig())
	assert.NoError(t, err)
}

func TestSendWelcome(t *testing.T) {
	m, err := New(testConfig())
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.SendWelcome(context.Background(), models.User{Name: "Kavya", Email: "kavya@example.com"}))

	assert.Equal(t, "sandbox.smtp.mailtrap.io:2525", gotAddr)
	assert.Equal(t, "noreply@wheelsup.app", gotFrom)
	assert.Equal(t, []string{"kavya@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Welcome to WheelsUp\r\n")
	assert.Contains(t, string(gotMsg), "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, string(gotMsg), "Hi Kavya")
}

func TestSendEmail_Errors(t *testing.T) {
	m, err := New(testConfig())
	require.NoError(t, err)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay refused") }

	err = m.SendEmail(context.Background(), "a@example.com", "hi", "plain body")
	assert.ErrorContains(t, err, "relay refused")

	assert.Error(t, m.SendEmail(context.Background(), "", "hi", "body"))
	assert.NoError(t, m.SendWelcome(context.Background(), models.User{Name: "No Email"}))
}

func TestBuildMessage_PlainText(t *testing.T) {
	msg := string(buildMessage("a@example.com", "b@example.com", "s", "hello"))
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
}

func TestSendWelcome_EscapesName(t *testing.T) {
	m, err := New(testConfig())
	require.NoError(t, err)

	var gotMsg []byte
	m.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	require.NoError(t, m.SendWelcome(context.Background(),
		models.User{Name: `<script>alert("x")</script>`, Email: "x@example.com"}))

	assert.NotContains(t, string(gotMsg), "<script>")
	assert.Contains(t, string(gotMsg), "Hi &lt;script&gt;")
}
