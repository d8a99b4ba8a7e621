package api

import (
	"strconv"
	"strings"

	"betpool/domain/entities"
	"betpool/domain/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler serves the JSON endpoints
type Handler struct {
	ops Operations
}

// NewHandler creates a new Handler
func NewHandler(ops Operations) *Handler {
	return &Handler{ops: ops}
}

type createUserRequest struct {
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Password  string  `json:"password"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type createBetRequest struct {
	JudgeID     int64    `json:"judge_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	ExpiresAt   string   `json:"expires_at"`
}

// updateBetRequest tells absent keys, which are left untouched, from keys
// sent as null, which are validated as empty
type updateBetRequest struct {
	Title       patchField[string]   `json:"title"`
	Description patchField[string]   `json:"description"`
	ExpiresAt   patchField[string]   `json:"expires_at"`
	Options     patchField[[]string] `json:"options"`
}

type joinBetRequest struct {
	OptionID int64           `json:"option_id"`
	Stake    decimal.Decimal `json:"stake"`
}

type resolveBetRequest struct {
	WinningOptionID int64 `json:"winning_option_id"`
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	respond(c, h.ops.CreateUser(c.Request.Context(), interfaces.CreateUserParams{
		Phone:     req.Phone,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}))
}

// Login handles POST /login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	respond(c, h.ops.Login(c.Request.Context(), req.Phone, req.Password))
}

// SoftDeleteUser handles DELETE /users/:phone
func (h *Handler) SoftDeleteUser(c *gin.Context) {
	respond(c, h.ops.SoftDeleteUser(c.Request.Context(), currentUserID(c), c.Param("phone")))
}

// GetWallet handles GET /wallets/me
func (h *Handler) GetWallet(c *gin.Context) {
	limit := 0
	if raw := c.Query("history"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			badRequest(c, "history must be a non-negative integer.")
			return
		}
		limit = parsed
	}
	respond(c, h.ops.GetWallet(c.Request.Context(), currentUserID(c), limit))
}

// ListBets handles GET /bets?status=&user_id=&limit=
func (h *Handler) ListBets(c *gin.Context) {
	var filter entities.BetFilter

	if raw := c.Query("status"); raw != "" {
		status := entities.BetStatus(strings.ToUpper(strings.TrimSpace(raw)))
		filter.Status = &status
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "user_id must be an integer.")
			return
		}
		filter.UserID = &userID
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer.")
			return
		}
		filter.Limit = limit
	}

	respond(c, h.ops.ListBets(c.Request.Context(), filter))
}

// GetBet handles GET /bets/:id
func (h *Handler) GetBet(c *gin.Context) {
	betID, ok := betIDParam(c)
	if !ok {
		return
	}
	respond(c, h.ops.GetBet(c.Request.Context(), betID))
}

// CreateBet handles POST /bets. The caller becomes the creator.
func (h *Handler) CreateBet(c *gin.Context) {
	var req createBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	respond(c, h.ops.CreateBet(c.Request.Context(), entities.CreateBetParams{
		CreatorID:   currentUserID(c),
		JudgeID:     req.JudgeID,
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
		ExpiresAt:   req.ExpiresAt,
	}))
}

// UpdateBet handles PATCH /bets/:id
func (h *Handler) UpdateBet(c *gin.Context) {
	betID, ok := betIDParam(c)
	if !ok {
		return
	}
	var req updateBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	patch := entities.BetPatch{
		Title:       req.Title.Ptr(),
		Description: req.Description.Ptr(),
		ExpiresAt:   req.ExpiresAt.Ptr(),
		Options:     req.Options.Ptr(),
	}
	respond(c, h.ops.UpdateBet(c.Request.Context(), currentUserID(c), betID, patch))
}

// DeleteBet handles DELETE /bets/:id
func (h *Handler) DeleteBet(c *gin.Context) {
	betID, ok := betIDParam(c)
	if !ok {
		return
	}
	respond(c, h.ops.DeleteBet(c.Request.Context(), currentUserID(c), betID))
}

// JoinBet handles POST /bets/:id/join
func (h *Handler) JoinBet(c *gin.Context) {
	betID, ok := betIDParam(c)
	if !ok {
		return
	}
	var req joinBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	respond(c, h.ops.JoinBet(c.Request.Context(), currentUserID(c), betID, req.OptionID, req.Stake))
}

// ResolveBet handles POST /bets/:id/resolve. The caller must be the judge.
func (h *Handler) ResolveBet(c *gin.Context) {
	betID, ok := betIDParam(c)
	if !ok {
		return
	}
	var req resolveBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	respond(c, h.ops.ResolveBet(c.Request.Context(), currentUserID(c), betID, req.WinningOptionID))
}

func betIDParam(c *gin.Context) (int64, bool) {
	betID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || betID <= 0 {
		badRequest(c, "Bet id must be a positive integer.")
		return 0, false
	}
	return betID, true
}
