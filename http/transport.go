package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"go-token-swap"
	"go-token-swap/catalog"
	"go-token-swap/exchange"
	"go-token-swap/format"
	"go-token-swap/history"
	"go-token-swap/orchestrator"
)

// Swapper the swap form operations exposed over HTTP. *orchestrator.Orchestrator
// satisfies Swapper.
type Swapper interface {
	SetFromCurrency(c swap.Currency) swap.Form
	SetToCurrency(c swap.Currency) swap.Form
	SetFromAmount(amount string) swap.Form
	Flip() swap.Form
	View() orchestrator.View
	Snapshot() *catalog.Snapshot
	Submit(ctx context.Context) (orchestrator.Result, error)
}

// Server dependencies for HTTP Server functions
type Server struct {
	Swapper  Swapper
	Exchange exchange.Service
	History  history.Service
	// Metrics served on /metrics when not nil
	Metrics http.Handler
	Logger  log.Logger

	now    func() time.Time
	router chi.Router
}

func NewServer(swapper Swapper, ex exchange.Service, h history.Service, metrics http.Handler, logger log.Logger) *Server {
	server := &Server{
		Swapper:  swapper,
		Exchange: ex,
		History:  h,
		Metrics:  metrics,
		Logger:   logger,
		now:      time.Now,
		router:   chi.NewRouter(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Get("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		s.router.Handle("/metrics", s.Metrics)
	}
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tokens", s.tokens())
		r.Get("/rate", s.rate())
		r.Post("/convert", s.convert())
		r.Get("/form", s.form())
		r.Patch("/form", s.editForm())
		r.Post("/form/flip", s.flip())
		r.Post("/swap", s.submit())
		r.Get("/history", s.history())
		r.Delete("/history", s.clearHistory())
	})
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// tokens lists the tradable tokens of the current catalog
func (s *Server) tokens() http.HandlerFunc {
	type token struct {
		Currency swap.Currency `json:"currency"`
		Date     time.Time     `json:"date"`
		Price    float64       `json:"price"`
		Icon     string        `json:"icon"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		quotes := s.Swapper.Snapshot().Quotes()
		tokens := make([]token, 0, len(quotes))
		for _, q := range quotes {
			tokens = append(tokens, token{
				Currency: q.Currency,
				Date:     q.Date,
				Price:    q.Price,
				Icon:     format.TokenIconURL(q.Currency),
			})
		}
		s.writeJSON(rw, http.StatusOK, tokens)
	}
}

// rate describes the exchange rate between the from and to query parameters
func (s *Server) rate() http.HandlerFunc {
	type response struct {
		Rate string `json:"rate"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		from := swap.Currency(r.URL.Query().Get("from"))
		to := swap.Currency(r.URL.Query().Get("to"))
		s.writeJSON(rw, http.StatusOK, response{Rate: exchange.RateDisplay(from, to, s.Swapper.Snapshot())})
	}
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency swap.Currency `json:"fromCurrency"`
		ToCurrency   swap.Currency `json:"toCurrency"`
		Amount       string        `json:"amount"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange float64 `json:"exchange"`
		Amount   string  `json:"amount"`
		Original string  `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		result, err := s.Exchange.Convert(r.Context(), req.Amount, req.FromCurrency, req.ToCurrency)
		switch {
		case errors.Is(err, exchange.ErrRateUnavailable):
			s.writeError(rw, http.StatusNotFound, exchange.RateUnavailable)
			return
		case err != nil:
			s.writeError(rw, http.StatusBadRequest, "failed conversion")
			return
		}

		s.writeJSON(rw, http.StatusOK, response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: req.Amount,
		})
	}
}

func (s *Server) form() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.writeJSON(rw, http.StatusOK, s.Swapper.View())
	}
}

// editForm applies the fields present in the request, each one recomputing
// the derived amount. Only currencies in the current catalog can be selected.
func (s *Server) editForm() http.HandlerFunc {
	type request struct {
		FromCurrency *swap.Currency `json:"fromCurrency"`
		ToCurrency   *swap.Currency `json:"toCurrency"`
		FromAmount   *string        `json:"fromAmount"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}
		for _, c := range []*swap.Currency{req.FromCurrency, req.ToCurrency} {
			if c == nil || *c == "" {
				continue
			}
			if _, ok := s.Swapper.Snapshot().Lookup(*c); !ok {
				s.writeError(rw, http.StatusBadRequest, "unknown token")
				return
			}
		}
		if req.FromCurrency != nil {
			s.Swapper.SetFromCurrency(*req.FromCurrency)
		}
		if req.ToCurrency != nil {
			s.Swapper.SetToCurrency(*req.ToCurrency)
		}
		if req.FromAmount != nil {
			s.Swapper.SetFromAmount(*req.FromAmount)
		}
		s.writeJSON(rw, http.StatusOK, s.Swapper.View())
	}
}

func (s *Server) flip() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.Swapper.Flip()
		s.writeJSON(rw, http.StatusOK, s.Swapper.View())
	}
}

// submit settles the current form. It blocks for the simulated delay. A client
// going away does not abandon a swap already submitted.
func (s *Server) submit() http.HandlerFunc {
	type response struct {
		Record       swap.Record       `json:"record"`
		Notification swap.Notification `json:"notification"`
	}
	type invalid struct {
		Errors map[string]string `json:"errors"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		result, err := s.Swapper.Submit(context.WithoutCancel(r.Context()))

		var verr *orchestrator.ValidationError
		switch {
		case errors.As(err, &verr):
			s.writeJSON(rw, http.StatusUnprocessableEntity, invalid{Errors: verr.Fields})
			return
		case errors.Is(err, orchestrator.ErrSubmitInProgress):
			s.writeError(rw, http.StatusConflict, "swap already in progress")
			return
		case errors.Is(err, orchestrator.ErrTokensUnavailable):
			s.writeError(rw, http.StatusServiceUnavailable, "tokens unavailable")
			return
		case err != nil:
			s.Logger.Log("msg", "submit failed", "err", err)
			s.writeError(rw, http.StatusInternalServerError, "swap could not be recorded")
			return
		}

		s.writeJSON(rw, http.StatusOK, response{Record: result.Record, Notification: result.Notification})
	}
}

func (s *Server) history() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		records, err := s.History.Records(r.Context())
		if err != nil {
			s.Logger.Log("msg", "loading history failed", "err", err)
			s.writeError(rw, http.StatusInternalServerError, "history unavailable")
			return
		}
		s.writeJSON(rw, http.StatusOK, format.Entries(records, s.now()))
	}
}

func (s *Server) clearHistory() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if err := s.History.Clear(r.Context()); err != nil {
			s.Logger.Log("msg", "clearing history failed", "err", err)
			s.writeError(rw, http.StatusInternalServerError, "history unavailable")
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		s.Logger.Log("msg", "failed json encoding", "err", err)
	}
}

func (s *Server) writeError(rw http.ResponseWriter, status int, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	s.writeJSON(rw, status, response{Error: msg})
}
