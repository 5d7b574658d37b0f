package email

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Template names used by the dispatcher.
const (
	TemplateVerificationCode  = "verification_code"
	TemplatePasswordReset     = "password_reset"
	TemplateWelcome           = "welcome"
	TemplateCourseCompleted   = "course_completed"
	TemplateCertificateIssued = "certificate_issued"
)

// Built-in fallbacks keep mail flowing when no template directory ships
// with the deployment. Files in the templates dir override them by name.
var builtinTemplates = map[string]string{
	TemplateVerificationCode: `<html><body>
<h2>Verify your email</h2>
<p>Hello {{.Name}},</p>
<p>Your verification code for {{.SiteName}} is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The code expires in {{.ExpiresMinutes}} minutes.</p>
</body></html>`,

	TemplatePasswordReset: `<html><body>
<h2>Reset your password</h2>
<p>Hello {{.Name}},</p>
<p>We received a request to reset your {{.SiteName}} password.</p>
<p><a href="{{.ResetURL}}">Reset password</a></p>
<p>The link expires in one hour. If you did not request this, ignore this email.</p>
</body></html>`,

	TemplateWelcome: `<html><body>
<h2>Welcome to {{.SiteName}}</h2>
<p>Hello {{.Name}}, your account is ready.</p>
</body></html>`,

	TemplateCourseCompleted: `<html><body>
<h2>Congratulations!</h2>
<p>Hello {{.Name}},</p>
<p>You completed <strong>{{.CourseTitle}}</strong> on {{.SiteName}}.</p>
</body></html>`,

	TemplateCertificateIssued: `<html><body>
<h2>Your certificate is ready</h2>
<p>Hello {{.Name}},</p>
<p>Your certificate for <strong>{{.CourseTitle}}</strong> has been issued.</p>
<p><a href="{{.CertificateURL}}">Download certificate</a></p>
</body></html>`,
}

// TemplateManager loads and caches templates from a directory, falling
// back to the built-ins. Template re-sends must be idempotent, so
// rendering has no side effects.
type TemplateManager struct {
	dir string

	mu    sync.Mutex
	cache map[string]*template.Template
}

func NewTemplateManager(dir string) *TemplateManager {
	return &TemplateManager{
		dir:   dir,
		cache: make(map[string]*template.Template),
	}
}

func (m *TemplateManager) Render(name string, data interface{}) (string, error) {
	tpl, err := m.load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return buf.String(), nil
}

func (m *TemplateManager) load(name string) (*template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tpl, ok := m.cache[name]; ok {
		return tpl, nil
	}

	var src string
	if m.dir != "" {
		path := filepath.Join(m.dir, name+".html")
		if raw, err := os.ReadFile(path); err == nil {
			src = string(raw)
		}
	}
	if src == "" {
		builtin, ok := builtinTemplates[name]
		if !ok {
			return nil, fmt.Errorf("unknown email template: %s", name)
		}
		src = builtin
	}

	tpl, err := template.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
	}
	m.cache[name] = tpl
	return tpl, nil
}

var (
	tagPattern   = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern = regexp.MustCompile(`[ \t]+`)
)

// PlainText derives the text/plain alternative from rendered HTML.
func PlainText(html string) string {
	text := strings.ReplaceAll(html, "</p>", "\n")
	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
