package invoices

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/demus23/myus-delivery-app-sub002/internal/platform/httpx"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

// Handler exposes invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers owner-facing invoice routes (behind RequireUser).
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listMine)
	r.Get("/{id}", h.get)
	r.Post("/{id}/resend-link", h.resendLink)
}

// MountAdminRoutes registers admin-only invoice routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/{id}/mark-paid", h.markPaid)
}

type createInvoiceRequest struct {
	QuoteID string `json:"quote_id" validate:"required,uuid4"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	inv, err := h.service.IssueForQuote(r.Context(), req.QuoteID)
	switch {
	case errors.Is(err, ErrNoChosenOption):
		httpx.Problem(w, http.StatusConflict, "Conflict", "quote has no chosen option")
	case err != nil && inv != nil:
		// Invoice exists but the email could not be queued; mirror
		// resend-link for recovery.
		h.logger.Warn("invoice created, email enqueue failed",
			slog.String("invoice_no", inv.InvoiceNo), slog.Any("error", err))
		httpx.JSON(w, http.StatusCreated, inv)
	case err != nil:
		h.logger.Error("create invoice", slog.Any("error", err), slog.String("quote_id", req.QuoteID))
		httpx.RespondError(w, err)
	default:
		httpx.JSON(w, http.StatusCreated, inv)
	}
}

// MountPublicRoutes registers the signed-link routes. No session; the
// token in the query string is the whole authorization.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.viewByToken)
	r.Get("/receipt.pdf", h.receiptByToken)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, pagination, err := h.service.ListMine(r.Context(), identity.UserID, page, perPage)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   list,
		"pagination": pagination,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), id, shared.IdentityFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) resendLink(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), id, shared.IdentityFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SendLink(r.Context(), inv); err != nil {
		h.logger.Error("resend invoice link", slog.Any("error", err), slog.String("invoice_no", inv.InvoiceNo))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"invoice_no": inv.InvoiceNo})
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// viewByToken serves invoice JSON to anyone holding a valid signed
// link. All failures get the same 403 so the response does not reveal
// whether the invoice exists, the token was forged, or it expired.
func (h *Handler) viewByToken(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.authorize(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) receiptByToken(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.authorize(w, r)
	if !ok {
		return
	}
	pdfBytes, err := BuildReceiptPDF(inv)
	if err != nil {
		h.logger.Error("render receipt pdf", slog.Any("error", err), slog.String("invoice_no", inv.InvoiceNo))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", inv.InvoiceNo+".pdf"))
	_, _ = w.Write(pdfBytes)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (*Invoice, bool) {
	invoiceNo := r.URL.Query().Get("invoice")
	token := r.URL.Query().Get("token")
	inv, err := h.service.ViewByToken(r.Context(), invoiceNo, token)
	if err != nil {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "link invalid or expired")
		return nil, false
	}
	return inv, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return 0, false
	}
	return id, true
}
