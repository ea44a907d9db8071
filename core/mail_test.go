package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	data := map[string]interface{}{"Username": "rahim", "ChangedAt": "2024-03-10 09:30 UTC"}

	t.Run("template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "password_changed", TemplateData: data}
		require.NoError(t, msg.Render("CoachDesk", "http://coach.test"))

		assert.Contains(t, msg.TextContent, "Hello rahim,")
		assert.Contains(t, msg.TextContent, "http://coach.test")
		assert.Contains(t, msg.HTMLContent, "<p>Hello rahim,</p>")
		assert.Contains(t, msg.HTMLContent, `<a href="http://coach.test">CoachDesk</a>`)
		assert.True(t, msg.HasContent())
	})

	t.Run("body wins over text template", func(t *testing.T) {
		msg := EmailMessage{BodyStr: "plain", TemplateName: "password_changed", TemplateData: data}
		require.NoError(t, msg.Render("CoachDesk", "http://coach.test"))
		assert.Equal(t, "plain", msg.TextContent)
		assert.NotEmpty(t, msg.HTMLContent)
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "nope"}
		assert.EqualError(t, msg.Render("CoachDesk", ""), `email template "nope" not found`)
	})

	t.Run("partials are not templates", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "_base"}
		assert.Error(t, msg.Render("CoachDesk", ""))
	})
}
