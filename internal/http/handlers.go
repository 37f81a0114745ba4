package http

import (
	"context"
	"net/http"
	"time"

	"keuangan/internal/core"
	applog "keuangan/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}).Write(w)
}

// handleReady loads the ledger once; a store that cannot be reached makes
// the service not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.ledger.Ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		NewJSONResponse().Status(http.StatusServiceUnavailable).Body(map[string]any{
			"status": "not_ready",
			"checks": map[string]string{"ledger_store": err.Error()},
		}).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"status": "ready",
		"checks": map[string]string{"ledger_store": "ok"},
	}).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	sess := s.session(r)
	if sess.ID == "" {
		sess = s.sessions.New()
	}
	sess, err := s.authn.Login(sess, p.Get("password"))
	if err != nil {
		s.logger.WarnContext(r.Context(), "Login failed",
			applog.FieldOperation, applog.OpLogin,
			applog.FieldClientIP, s.detector.ExtractClientIP(r))
		UnauthorizedError().Write(w)
		return
	}
	sess = s.sessions.Save(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	s.logger.InfoContext(r.Context(), "Login succeeded", applog.FieldOperation, applog.OpLogin)
	NewJSONResponse().Body(map[string]any{
		"authenticated": true,
		"expires_at":    sess.ExpiresAt.Format(time.RFC3339),
	}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.session(r); sess.ID != "" {
		s.sessions.Delete(sess.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	NewJSONResponse().Body(map[string]any{"authenticated": false}).Write(w)
}

// handlePlan exposes the accounts and categories a client needs for its
// entry form.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if !s.session(r).Authenticated {
		UnauthorizedError().Write(w)
		return
	}
	NewJSONResponse().Body(toPlanDTO(s.ledger.Plan())).Write(w)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.Balances(r.Context(), s.session(r))
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpLoad, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"balances": toBalanceDTOs(balances)}).Write(w)
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	nw, err := s.ledger.NetWorth(r.Context(), s.session(r))
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpLoad, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"net_worth": nw.Minor}).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpSummary, err)
		return
	}
	summary, err := s.ledger.MonthlySummary(r.Context(), s.session(r), params.Year, params.Month)
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toSummaryDTO(summary)).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpSummary, err)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), s.session(r), params.Year, params.Month)
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toDashboardDTO(d)).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseOptionalPeriod(r.URL.Query())
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpLoad, err)
		return
	}
	newest, err := ParseNewestFirst(r.URL.Query())
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpLoad, err)
		return
	}
	txs, err := s.ledger.Transactions(r.Context(), s.session(r), filter)
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpLoad, err)
		return
	}
	if newest {
		txs = core.SortByDateDesc(txs)
	}
	NewJSONResponse().Body(map[string]any{"transactions": toTransactionDTOs(txs)}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if !sess.Authenticated {
		UnauthorizedError().Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	req, err := ParseSubmission(p, s.now())
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpSubmit, err)
		return
	}

	txs, err := s.ledger.Submit(r.Context(), sess, req)
	if err != nil {
		writeServiceError(r.Context(), w, applog.OpSubmit, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).
		Body(map[string]any{"transactions": toTransactionDTOs(txs)}).
		Write(w)
}
