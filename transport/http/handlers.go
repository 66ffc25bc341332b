package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	walletlink "github.com/layer-3/walletlink"
	"github.com/layer-3/walletlink/core"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const eventBuffer = 32

// WalletHandlers contains HTTP handlers for wallet endpoints
type WalletHandlers struct {
	client walletlink.Client
	logger zerolog.Logger
}

// NewWalletHandlers creates new wallet handlers
func NewWalletHandlers(client walletlink.Client, logger zerolog.Logger) *WalletHandlers {
	return &WalletHandlers{client: client, logger: logger}
}

// Health reports liveness
func (h *WalletHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Initialize probes the signing service
func (h *WalletHandlers) Initialize(c *gin.Context) {
	ready := h.client.Initialize(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"ready":     ready,
		"simulated": h.client.State().Simulated,
	})
}

// Connect runs the connect flow and blocks until it ends
func (h *WalletHandlers) Connect(c *gin.Context) {
	res, err := h.client.Connect(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Disconnect forgets the session
func (h *WalletHandlers) Disconnect(c *gin.Context) {
	h.client.Disconnect(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Disconnected"})
}

// State returns the coordinator state
func (h *WalletHandlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.State())
}

// Sign handles a transaction signing request
func (h *WalletHandlers) Sign(c *gin.Context) {
	var req struct {
		TxJSON  core.TxJSON      `json:"txjson" binding:"required"`
		Options core.SignOptions `json:"options"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res, err := h.client.Sign(c.Request.Context(), req.TxJSON, req.Options)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Pay handles XRP and issued-currency payments
func (h *WalletHandlers) Pay(c *gin.Context) {
	var req struct {
		Destination    string  `json:"destination" binding:"required"`
		Amount         string  `json:"amount" binding:"required"`
		Currency       string  `json:"currency"`
		Issuer         string  `json:"issuer"`
		DestinationTag *uint32 `json:"destinationTag"`
		Memo           string  `json:"memo"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	payment := walletlink.Payment{
		Destination:    req.Destination,
		Amount:         amount,
		DestinationTag: req.DestinationTag,
		Memo:           req.Memo,
		Currency:       req.Currency,
		Issuer:         req.Issuer,
	}

	var res walletlink.SignResult
	if req.Currency == "" || req.Currency == "XRP" {
		res, err = h.client.SendPayment(c.Request.Context(), payment)
	} else {
		res, err = h.client.SendTokenPayment(c.Request.Context(), payment)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// TrustLine handles trust line creation
func (h *WalletHandlers) TrustLine(c *gin.Context) {
	var req struct {
		Currency string `json:"currency" binding:"required"`
		Issuer   string `json:"issuer" binding:"required"`
		Limit    string `json:"limit"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res, err := h.client.CreateTrustLine(c.Request.Context(), req.Currency, req.Issuer, req.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Refresh reloads account data
func (h *WalletHandlers) Refresh(c *gin.Context) {
	snap, err := h.client.RefreshAccountData(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ValidateAddress checks an XRPL address
func (h *WalletHandlers) ValidateAddress(c *gin.Context) {
	address := c.Param("address")
	c.JSON(http.StatusOK, gin.H{
		"address": address,
		"valid":   walletlink.IsValidAddress(address),
	})
}

// Convert converts between XRP and drops
func (h *WalletHandlers) Convert(c *gin.Context) {
	if xrp := c.Query("xrp"); xrp != "" {
		amount, err := decimal.NewFromString(xrp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		drops, err := walletlink.XRPToDrops(amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"xrp":       amount.String(),
			"drops":     drops,
			"formatted": walletlink.FormatAmount(amount, "XRP"),
		})
		return
	}

	if drops := c.Query("drops"); drops != "" {
		amount, err := walletlink.DropsToXRP(drops)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"xrp":       amount.String(),
			"drops":     drops,
			"formatted": walletlink.FormatAmount(amount, "XRP"),
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "xrp or drops is required"})
}

// Events streams lifecycle events as server-sent events
func (h *WalletHandlers) Events(c *gin.Context) {
	events := make(chan core.Event, eventBuffer)
	id := h.client.Subscribe(func(e core.Event) {
		select {
		case events <- e:
		default:
			h.logger.Warn().Str("kind", string(e.Kind)).Msg("event stream is full, dropping event")
		}
	})
	defer h.client.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// send headers now so the client knows it is subscribed
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e := <-events:
			c.SSEvent(string(e.Kind), e)
			return true
		}
	})
}

// fail maps coordinator errors to status codes
func (h *WalletHandlers) fail(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errorMsg := err.Error()

	switch {
	case errors.Is(err, core.ErrNoSession):
		statusCode = http.StatusUnauthorized
	case errors.Is(err, core.ErrNotInitialized):
		statusCode = http.StatusConflict
	case errors.Is(err, core.ErrDeclined):
		statusCode = http.StatusConflict
	case errors.Is(err, core.ErrExpired):
		statusCode = http.StatusGatewayTimeout
	case errors.Is(err, core.ErrRequestCreation), errors.Is(err, core.ErrPollFailed):
		statusCode = http.StatusBadGateway
	case errors.Is(err, core.ErrInvalidAddress), errors.Is(err, core.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("wallet operation failed")
		errorMsg = "Internal error"
	}

	c.JSON(statusCode, gin.H{
		"error": errorMsg,
		"state": core.StateFromError(err).String(),
	})
}
