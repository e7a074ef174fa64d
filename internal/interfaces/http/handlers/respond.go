// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	RedirectTo string      `json:"redirect_to,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}

// respondError maps domain errors to HTTP status codes. Precondition
// failures carry the page the client should send the user to.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error(), RedirectTo: "/cart"})
	case errors.Is(err, order.ErrMissingAddress):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error(), RedirectTo: "/shipping-address"})
	case errors.Is(err, order.ErrMissingPaymentMethod):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error(), RedirectTo: "/payment-method"})

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Message: err.Error()})

	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, order.ErrNotPaid):
		c.JSON(http.StatusConflict, Response{Success: false, Message: err.Error()})

	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: err.Error()})

	case errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, user.ErrInvalidPaymentMethod),
		errors.Is(err, payment.ErrCaptureIncomplete):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})

	default:
		var provErr *payment.ProviderError
		if errors.As(err, &provErr) {
			c.JSON(http.StatusBadGateway, Response{Success: false, Message: "Payment provider error"})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "Internal server error"})
	}
}
