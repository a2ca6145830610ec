package http

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"painel/internal/auth"
	"painel/internal/log"
)

const (
	sessionCookie = "painel_session"

	msgInvalidLogin = "Usuário ou senha inválidos."
	msgTooManyLogin = "Muitas tentativas de login. Tente novamente em instantes."
)

type contextKey string

const sessionKey contextKey = "session"

// SessionFromContext returns the session attached by requireSession.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(auth.Session)
	return sess, ok
}

type loginPage struct {
	Error    string
	Username string
}

// handleLogin serves the login form and dispatches submissions through the
// per-client rate limiter.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if _, ok := s.currentSession(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.renderLogin(w, r, http.StatusOK, loginPage{})
	case http.MethodPost:
		s.limitedLogin.ServeHTTP(w, r)
	default:
		MethodNotAllowedError("GET, HEAD, POST").Write(w)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	logger := log.FromContext(r.Context())

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	if s.store == nil || s.sessions == nil || !s.store.Verify(username, password) {
		s.appMetrics.loginsFailed.Add(1)
		logger.WarnContext(r.Context(), "Login failed",
			log.FieldOperation, log.OpLogin,
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r))
		s.renderLogin(w, r, http.StatusUnauthorized, loginPage{Error: msgInvalidLogin, Username: sanitizeInput(username)})
		return
	}

	s.loginLimiter.Reset(s.securityDetector.ExtractClientIP(r))
	sess := s.sessions.Create(username)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	s.appMetrics.loginsOK.Add(1)
	logger.InfoContext(r.Context(), "Login succeeded", log.FieldOperation, log.OpLogin, log.FieldUser, username)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLoginLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Login rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r))
	s.renderLogin(w, r, http.StatusTooManyRequests, loginPage{Error: msgTooManyLogin})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if sess, ok := s.currentSession(r); ok {
		s.sessions.Delete(sess.ID)
		log.FromContext(r.Context()).InfoContext(r.Context(), "Logout", log.FieldOperation, log.OpLogout, log.FieldUser, sess.Username)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	if isHTMX(r) {
		NewHTMXResponse().Redirect("/login").Write(w)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) currentSession(r *http.Request) (auth.Session, bool) {
	if s.sessions == nil {
		return auth.Session{}, false
	}
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return auth.Session{}, false
	}
	return s.sessions.Get(c.Value)
}

// requireSession lets authenticated requests through. Others are sent to the
// login page: a redirect for pages, HX-Redirect for htmx and 401 for the API.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			switch {
			case isHTMX(r):
				NewHTMXResponse().Status(http.StatusUnauthorized).Redirect("/login").Write(w)
			case strings.HasPrefix(r.URL.Path, "/api/"):
				NewHTMXResponse().Status(http.StatusUnauthorized).BodyJSON(map[string]string{"error": "unauthorized"}).Write(w)
			default:
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, page loginPage) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "login.html", page); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Login template execution failed",
			log.FieldError, err, log.FieldTemplate, "login.html")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(buf.String()).Write(w)
}
