package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hamstergame/platform/internal/auth"
	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/ledger"
	"github.com/hamstergame/platform/internal/service"
	"github.com/google/uuid"
)

// ShopHandler serves the catalog and the purchase workflow.
type ShopHandler struct {
	catalog *service.CatalogService
	engine  *ledger.Engine
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(catalog *service.CatalogService, engine *ledger.Engine) *ShopHandler {
	return &ShopHandler{catalog: catalog, engine: engine}
}

// ListCatalog handles GET /catalog.
func (h *ShopHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type purchaseRequest struct {
	Identity string      `json:"identity"`
	ItemID   string      `json:"itemId"`
	Quantity json.Number `json:"quantity"`
}

type itemSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

type purchaseResponse struct {
	OK                  bool        `json:"ok"`
	Message             string      `json:"message"`
	Item                itemSummary `json:"item"`
	Quantity            int         `json:"quantity"`
	TotalPrice          int64       `json:"totalPrice"`
	NewBalance          int64       `json:"newBalance"`
	CreatedInventoryIDs []uuid.UUID `json:"createdInventoryIds"`
	TransactionID       *uuid.UUID  `json:"transactionId"`
}

// Purchase handles POST /purchase.
func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := DecodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	identity, err := callerIdentity(r, req.Identity)
	if err != nil {
		RespondError(w, err)
		return
	}

	quantity := 0
	if req.Quantity != "" {
		quantity, err = integerField("quantity", req.Quantity)
		if err != nil {
			RespondError(w, err)
			return
		}
	}

	result, err := h.engine.ExecutePurchase(r.Context(), domain.PurchaseInput{
		Identity: identity,
		ItemID:   req.ItemID,
		Quantity: quantity,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, purchaseResponse{
		OK:      true,
		Message: "purchase completed",
		Item: itemSummary{
			ID:       result.Item.ID,
			Name:     result.Item.Name,
			Category: result.Item.Category,
		},
		Quantity:            result.Quantity,
		TotalPrice:          result.TotalPrice,
		NewBalance:          result.NewBalance,
		CreatedInventoryIDs: result.CreatedInventoryIDs,
		TransactionID:       result.TransactionID,
	})
}

// callerIdentity returns the verified session email. A body identity that
// names someone else is forbidden.
func callerIdentity(r *http.Request, bodyIdentity string) (string, error) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.Email == "" {
		return "", domain.ErrUnauthorized("missing session")
	}
	if bodyIdentity != "" && domain.NormalizeEmail(bodyIdentity) != domain.NormalizeEmail(claims.Email) {
		return "", domain.ErrForbidden("identity does not match session")
	}
	return claims.Email, nil
}

// integerField parses a JSON number that must hold an integer.
func integerField(name string, n json.Number) (int, error) {
	v, err := n.Int64()
	if err != nil || v < -1<<31 || v > 1<<31-1 {
		return 0, domain.ErrValidation(name + " must be an integer")
	}
	return int(v), nil
}
