package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBuiltin(t *testing.T) {
	m := NewTemplateManager("")

	html, err := m.Render(TemplateVerificationCode, map[string]interface{}{
		"Name":           "Aigerim",
		"SiteName":       "Maria Academy",
		"Code":           "482915",
		"ExpiresMinutes": 15,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Aigerim")
	assert.Contains(t, html, "482915")
	assert.Contains(t, html, "Maria Academy")
}

func TestRenderUnknownTemplate(t *testing.T) {
	m := NewTemplateManager("")
	_, err := m.Render("no_such_template", nil)
	assert.Error(t, err)
}

func TestRenderFileOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := `<html><body><p>Custom welcome for {{.Name}}</p></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateWelcome+".html"), []byte(custom), 0o644))

	m := NewTemplateManager(dir)
	html, err := m.Render(TemplateWelcome, map[string]interface{}{"Name": "Dias"})
	require.NoError(t, err)
	assert.Contains(t, html, "Custom welcome for Dias")
}

func TestRenderEscapesHTML(t *testing.T) {
	m := NewTemplateManager("")
	html, err := m.Render(TemplateWelcome, map[string]interface{}{
		"Name":     "<script>alert(1)</script>",
		"SiteName": "Maria Academy",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestPlainText(t *testing.T) {
	text := PlainText(`<html><body>
<h2>Verify your email</h2>
<p>Hello Aigerim,</p>
<p>Your code is:</p>
<p style="font-size:24px">482915</p>
</body></html>`)

	assert.Contains(t, text, "Hello Aigerim,")
	assert.Contains(t, text, "482915")
	assert.NotContains(t, text, "<")
	assert.NotContains(t, text, "style=")
}
