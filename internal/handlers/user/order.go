package user

import (
	"errors"
	"net/http"

	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

// FailOrder traduit les erreurs du service de commandes.
func FailOrder(c *gin.Context, what string, err error) {
	switch {
	case errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrNoItems),
		errors.Is(err, orders.ErrInvalidItem),
		errors.Is(err, orders.ErrInvalidAddress),
		errors.Is(err, orders.ErrInvalidStatus):
		handlers.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		handlers.Fail(c, http.StatusNotFound, err.Error())
	default:
		handlers.Internal(c, what, err)
	}
}

// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	var input struct {
		Items           []models.OrderItem     `json:"items"`
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	order, err := h.orders.Create(c.Request.Context(), me, input.Items, input.ShippingAddress)
	if err != nil {
		FailOrder(c, "Erreur création commande", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GET /api/orders[?status=]
func (h *OrderHandler) List(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	list, err := h.orders.List(c.Request.Context(), me.ID, c.Query("status"))
	if err != nil {
		FailOrder(c, "Erreur récupération commandes", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), me.ID, c.Param("id"))
	if err != nil {
		FailOrder(c, "Erreur récupération commande", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /api/orders/:id/qr
func (h *OrderHandler) QRCode(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	png, err := h.orders.QRCode(c.Request.Context(), me.ID, c.Param("id"))
	if err != nil {
		FailOrder(c, "Erreur génération QR code", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// PUT /api/orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		FailOrder(c, "Erreur mise à jour statut", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
