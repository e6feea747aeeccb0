package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"turmoil/internal/auth"
	"turmoil/internal/config"
	"turmoil/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const userContextKey contextKey = "user"

type UserContext struct {
	UserID int64
}

type Server struct {
	cfg    config.APIConfig
	log    *slog.Logger
	tokens *auth.Tokens
	game   *game.Service
	mux    *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, tokens *auth.Tokens, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		log:    logger,
		tokens: tokens,
		game:   gameSvc,
		mux:    chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/countries", s.handleCountries)
		r.Get("/countries/{id}/regions", s.handleRegions)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/me", s.handleAccount)
			r.Get("/me/wallet", s.handleWallet)
			r.Get("/me/inventory", s.handleInventory)
			r.Get("/me/job", s.handleMyJob)
			r.Get("/me/companies", s.handleMyCompanies)
			r.Post("/me/daily", s.handleDaily)
			r.Post("/me/travel", s.handleTravel)
			r.Post("/me/residence", s.handleMoveResidence)

			r.Get("/users/{id}", s.handleProfile)
			r.Post("/users/{id}/donate", s.handleDonate)
			r.Post("/users/{id}/gift", s.handleGift)
			r.Post("/users/{id}/friend-request", s.handleFriendRequest)
			r.Post("/friend-requests/{alert_id}/accept", s.handleFriendAccept)
			r.Post("/friend-requests/{alert_id}/decline", s.handleFriendDecline)
			r.Get("/friends", s.handleFriends)
			r.Delete("/friends/{id}", s.handleFriendRemove)

			r.Get("/alerts", s.handleAlerts)
			r.Post("/alerts/{id}/read", s.handleAlertRead)
			r.Delete("/alerts/{id}", s.handleAlertDelete)

			r.Post("/newspapers", s.handleCreateNewspaper)
			r.Get("/newspapers/{id}", s.handleNewspaper)
			r.Get("/me/newspaper", s.handleMyNewspaper)

			r.Get("/mail", s.handleMailList)
			r.Post("/mail", s.handleMailSend)
			r.Post("/mail/{id}/read", s.handleMailRead)
			r.Delete("/mail/{id}", s.handleMailDelete)

			r.Post("/companies", s.handleCreateCompany)
			r.Get("/companies/{id}", s.handleCompanyDetails)
			r.Post("/companies/{id}/rebrand", s.handleRebrand)
			r.Post("/companies/{id}/relocate", s.handleRelocate)
			r.Post("/companies/{id}/funds/deposit", s.handleFundsDeposit)
			r.Post("/companies/{id}/funds/withdraw", s.handleFundsWithdraw)
			r.Post("/companies/{id}/storage/deposit", s.handleStorageDeposit)

			r.Post("/companies/{id}/goods-offers", s.handleGoodsOfferCreate)
			r.Put("/companies/{id}/goods-offers", s.handleGoodsOfferEdit)
			r.Delete("/companies/{id}/goods-offers/{offer_id}", s.handleGoodsOfferDelete)
			r.Post("/companies/{id}/job-offers", s.handleJobOfferCreate)
			r.Put("/companies/{id}/job-offers", s.handleJobOfferEdit)
			r.Delete("/companies/{id}/job-offers/{offer_id}", s.handleJobOfferDelete)

			r.Get("/markets/goods", s.handleGoodsMarket)
			r.Get("/markets/jobs", s.handleJobsMarket)
			r.Post("/markets/goods/{offer_id}/purchase", s.handlePurchase)
			r.Post("/markets/jobs/{offer_id}/apply", s.handleJobApply)
		})
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, UserContext{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) (UserContext, error) {
	v := ctx.Value(userContextKey)
	user, ok := v.(UserContext)
	if !ok || user.UserID == 0 {
		return UserContext{}, errors.New("missing auth context")
	}
	return user, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidRequest),
		errors.Is(err, game.ErrInsufficientGold),
		errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrInsufficientBalance),
		errors.Is(err, game.ErrInsufficientStock),
		errors.Is(err, game.ErrInsufficientItems),
		errors.Is(err, game.ErrInsufficientHealth):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrUnauthorized),
		errors.Is(err, game.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrUserNotFound),
		errors.Is(err, game.ErrCompanyNotFound),
		errors.Is(err, game.ErrOfferNotFound),
		errors.Is(err, game.ErrWalletNotFound),
		errors.Is(err, game.ErrFundsNotFound),
		errors.Is(err, game.ErrItemNotFound),
		errors.Is(err, game.ErrJobNotFound),
		errors.Is(err, game.ErrCurrencyNotFound),
		errors.Is(err, game.ErrAlertNotFound),
		errors.Is(err, game.ErrPendingNotFound),
		errors.Is(err, game.ErrMailNotFound),
		errors.Is(err, game.ErrNewspaperNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrAlreadyPerformedToday),
		errors.Is(err, game.ErrAlreadyTaken),
		errors.Is(err, game.ErrAlreadyFriend),
		errors.Is(err, game.ErrAlreadyPending),
		errors.Is(err, game.ErrAlreadyPublisher),
		errors.Is(err, game.ErrHealthFull),
		errors.Is(err, game.ErrDailiesIncomplete),
		errors.Is(err, game.ErrTxConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
