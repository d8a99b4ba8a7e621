package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"betpool/application"
	"betpool/domain/entities"
	"betpool/domain/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOperations struct {
	mock.Mock
}

func (m *mockOperations) CreateUser(ctx context.Context, params interfaces.CreateUserParams) application.Result[*entities.User] {
	return m.Called(ctx, params).Get(0).(application.Result[*entities.User])
}

func (m *mockOperations) Login(ctx context.Context, phone, password string) application.Result[*application.LoginPayload] {
	return m.Called(ctx, phone, password).Get(0).(application.Result[*application.LoginPayload])
}

func (m *mockOperations) SoftDeleteUser(ctx context.Context, actorID int64, phone string) application.Result[*entities.User] {
	return m.Called(ctx, actorID, phone).Get(0).(application.Result[*entities.User])
}

func (m *mockOperations) VerifyToken(ctx context.Context, token string) application.Result[int64] {
	return m.Called(ctx, token).Get(0).(application.Result[int64])
}

func (m *mockOperations) GetWallet(ctx context.Context, userID int64, historyLimit int) application.Result[*entities.WalletSummary] {
	return m.Called(ctx, userID, historyLimit).Get(0).(application.Result[*entities.WalletSummary])
}

func (m *mockOperations) CreateBet(ctx context.Context, params entities.CreateBetParams) application.Result[*entities.BetDetail] {
	return m.Called(ctx, params).Get(0).(application.Result[*entities.BetDetail])
}

func (m *mockOperations) UpdateBet(ctx context.Context, actorID, betID int64, patch entities.BetPatch) application.Result[*entities.BetDetail] {
	return m.Called(ctx, actorID, betID, patch).Get(0).(application.Result[*entities.BetDetail])
}

func (m *mockOperations) DeleteBet(ctx context.Context, actorID, betID int64) application.Result[*application.BetRef] {
	return m.Called(ctx, actorID, betID).Get(0).(application.Result[*application.BetRef])
}

func (m *mockOperations) JoinBet(ctx context.Context, userID, betID, optionID int64, stake decimal.Decimal) application.Result[*entities.Participation] {
	return m.Called(ctx, userID, betID, optionID, stake).Get(0).(application.Result[*entities.Participation])
}

func (m *mockOperations) ResolveBet(ctx context.Context, judgeID, betID, winningOptionID int64) application.Result[*entities.SettlementResult] {
	return m.Called(ctx, judgeID, betID, winningOptionID).Get(0).(application.Result[*entities.SettlementResult])
}

func (m *mockOperations) GetBet(ctx context.Context, betID int64) application.Result[*entities.BetDetail] {
	return m.Called(ctx, betID).Get(0).(application.Result[*entities.BetDetail])
}

func (m *mockOperations) ListBets(ctx context.Context, filter entities.BetFilter) application.Result[[]application.BetListItem] {
	return m.Called(ctx, filter).Get(0).(application.Result[[]application.BetListItem])
}

const testToken = "valid-token"

func setupRouter(t *testing.T) (*gin.Engine, *mockOperations) {
	gin.SetMode(gin.TestMode)
	ops := new(mockOperations)
	t.Cleanup(func() { ops.AssertExpectations(t) })
	return NewRouter(ops, nil, nil), ops
}

func expectAuth(ops *mockOperations, userID int64) {
	ops.On("VerifyToken", mock.Anything, testToken).Return(application.Result[int64]{Success: true, Payload: userID})
}

func doRequest(router *gin.Engine, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewReader([]byte(b))
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateUser(t *testing.T) {
	router, ops := setupRouter(t)

	email := "abebe@example.com"
	params := interfaces.CreateUserParams{Phone: "0911223344", Email: &email, FirstName: "Abebe", LastName: "Kebede", Password: "pw"}
	ops.On("CreateUser", mock.Anything, params).Return(application.Result[*entities.User]{
		Success: true,
		Message: "User created successfully.",
		Payload: &entities.User{ID: 1, Phone: "0911223344", FirstName: "Abebe"},
	})

	rec := doRequest(router, http.MethodPost, "/users", map[string]any{
		"phone": "0911223344", "email": email, "first_name": "Abebe", "last_name": "Kebede", "password": "pw",
	}, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	payload := body["payload"].(map[string]any)
	assert.Equal(t, "0911223344", payload["phone"])
	assert.NotContains(t, payload, "password_hash")
}

func TestCreateUser_Conflict(t *testing.T) {
	router, ops := setupRouter(t)
	ops.On("CreateUser", mock.Anything, mock.Anything).Return(application.Result[*entities.User]{
		Success: false,
		Message: entities.ErrPhoneInUse.Message,
		Code:    entities.ErrPhoneInUse.Code,
		Kind:    entities.KindConflict,
	})

	rec := doRequest(router, http.MethodPost, "/users", map[string]any{"phone": "0911223344"}, false)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Phone number already in use.", body["message"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router, ops := setupRouter(t)
	ops.On("Login", mock.Anything, "0911223344", "wrong").Return(application.Result[*application.LoginPayload]{
		Message: entities.ErrInvalidCredentials.Message,
		Code:    entities.ErrInvalidCredentials.Code,
		Kind:    entities.KindAuthorization,
	})

	rec := doRequest(router, http.MethodPost, "/login", map[string]any{"phone": "0911223344", "password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doRequest(router, http.MethodPost, "/login", "{not json", false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, rec)["code"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, ops := setupRouter(t)

	rec := doRequest(router, http.MethodPost, "/bets", map[string]any{}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ops.On("VerifyToken", mock.Anything, testToken).Return(application.Result[int64]{
		Message: entities.ErrInvalidToken.Message,
		Code:    entities.ErrInvalidToken.Code,
		Kind:    entities.KindAuthorization,
	})
	rec = doRequest(router, http.MethodGet, "/wallets/me", nil, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ops.AssertNotCalled(t, "GetWallet", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBet_UsesCallerAsCreator(t *testing.T) {
	router, ops := setupRouter(t)
	expectAuth(ops, 7)

	params := entities.CreateBetParams{
		CreatorID: 7,
		JudgeID:   9,
		Title:     "Derby",
		Options:   []string{"Home", "Away"},
		ExpiresAt: "2030-01-01T18:00:00Z",
	}
	ops.On("CreateBet", mock.Anything, params).Return(application.Result[*entities.BetDetail]{
		Success: true,
		Payload: &entities.BetDetail{Bet: &entities.Bet{ID: 3, Title: "Derby"}, Status: entities.BetStatusOpen},
	})

	rec := doRequest(router, http.MethodPost, "/bets", map[string]any{
		"judge_id": 9, "title": "Derby", "options": []string{"Home", "Away"}, "expires_at": "2030-01-01T18:00:00Z",
	}, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := decode(t, rec)["payload"].(map[string]any)
	assert.Equal(t, "OPEN", payload["status"])
}

func TestUpdateBet_DistinguishesAbsentFromEmpty(t *testing.T) {
	router, ops := setupRouter(t)
	expectAuth(ops, 7)

	ops.On("UpdateBet", mock.Anything, int64(7), int64(3), mock.MatchedBy(func(p entities.BetPatch) bool {
		return p.Title != nil && *p.Title == "" && p.Description == nil && p.ExpiresAt == nil && p.Options == nil
	})).Return(application.Result[*entities.BetDetail]{
		Message: entities.ErrEmptyField.Message,
		Code:    entities.ErrEmptyField.Code,
		Kind:    entities.KindValidation,
		Errors:  []application.FieldError{{Field: "title", Code: entities.ErrEmptyField.Code, Message: entities.ErrEmptyField.Message}},
	})

	rec := doRequest(router, http.MethodPatch, "/bets/3", map[string]any{"title": ""}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].(map[string]any)["field"])
}

func TestUpdateBet_NullIsPresent(t *testing.T) {
	router, ops := setupRouter(t)
	expectAuth(ops, 7)

	ops.On("UpdateBet", mock.Anything, int64(7), int64(3), mock.MatchedBy(func(p entities.BetPatch) bool {
		return p.Title != nil && *p.Title == "" &&
			p.Options != nil && len(*p.Options) == 0 &&
			p.Description == nil && p.ExpiresAt == nil
	})).Return(application.Result[*entities.BetDetail]{
		Message: entities.ErrEmptyField.Message,
		Code:    entities.ErrEmptyField.Code,
		Kind:    entities.KindValidation,
		Errors:  []application.FieldError{{Field: "title", Code: entities.ErrEmptyField.Code, Message: entities.ErrEmptyField.Message}},
	})

	rec := doRequest(router, http.MethodPatch, "/bets/3", `{"title": null, "options": null}`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ops.AssertExpectations(t)
}

func TestPatchField(t *testing.T) {
	var req updateBetRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title": null, "description": "Friendly"}`), &req))

	assert.True(t, req.Title.Present)
	require.NotNil(t, req.Title.Ptr())
	assert.Equal(t, "", *req.Title.Ptr())
	assert.Equal(t, "Friendly", *req.Description.Ptr())
	assert.Nil(t, req.ExpiresAt.Ptr())
	assert.Nil(t, req.Options.Ptr())

	assert.Error(t, json.Unmarshal([]byte(`{"title": 5}`), &req))
}

func TestJoinBet(t *testing.T) {
	router, ops := setupRouter(t)
	expectAuth(ops, 5)

	ops.On("JoinBet", mock.Anything, int64(5), int64(3), int64(11), mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("12.50"))
	})).Return(application.Result[*entities.Participation]{
		Success: true,
		Payload: &entities.Participation{ID: 1, BetID: 3, UserID: 5, OptionID: 11, Stake: decimal.RequireFromString("12.50")},
	})

	rec := doRequest(router, http.MethodPost, "/bets/3/join", `{"option_id": 11, "stake": "12.50"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJoinBet_Rejections(t *testing.T) {
	tests := []struct {
		err    *entities.DomainError
		status int
	}{
		{entities.ErrJudgeCannotParticipate, http.StatusForbidden},
		{entities.ErrAlreadyJoined, http.StatusConflict},
		{entities.ErrBetNotFound, http.StatusNotFound},
		{entities.ErrNonPositiveStake, http.StatusBadRequest},
		{entities.ErrIntegrityViolation, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			router, ops := setupRouter(t)
			expectAuth(ops, 5)
			ops.On("JoinBet", mock.Anything, int64(5), int64(3), int64(11), mock.Anything).Return(application.Result[*entities.Participation]{
				Message: tt.err.Message,
				Code:    tt.err.Code,
				Kind:    tt.err.Kind,
			})

			rec := doRequest(router, http.MethodPost, "/bets/3/join", `{"option_id": 11, "stake": 1}`, true)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.err.Message, decode(t, rec)["message"])
		})
	}
}

func TestUnexpectedErrorIs500(t *testing.T) {
	router, ops := setupRouter(t)
	ops.On("GetBet", mock.Anything, int64(3)).Return(application.Result[*entities.BetDetail]{
		Message: application.UnexpectedErrorMessage,
	})

	rec := doRequest(router, http.MethodGet, "/bets/3", nil, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, application.UnexpectedErrorMessage, decode(t, rec)["message"])
}

func TestResolveBet_CallerIsJudge(t *testing.T) {
	router, ops := setupRouter(t)
	expectAuth(ops, 9)
	ops.On("ResolveBet", mock.Anything, int64(9), int64(3), int64(12)).Return(application.Result[*entities.SettlementResult]{
		Success: true,
		Payload: &entities.SettlementResult{Bet: &entities.Bet{ID: 3, IsResolved: true}},
	})

	rec := doRequest(router, http.MethodPost, "/bets/3/resolve", map[string]any{"winning_option_id": 12}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBets_QueryParameters(t *testing.T) {
	router, ops := setupRouter(t)
	ops.On("ListBets", mock.Anything, mock.MatchedBy(func(f entities.BetFilter) bool {
		return f.Status != nil && *f.Status == entities.BetStatusOpen && f.UserID != nil && *f.UserID == 4 && f.Limit == 10
	})).Return(application.Result[[]application.BetListItem]{
		Success: true,
		Payload: []application.BetListItem{{Bet: &entities.Bet{ID: 1, Title: "t"}, Status: entities.BetStatusOpen}},
	})

	rec := doRequest(router, http.MethodGet, "/bets?status=open&user_id=4&limit=10", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["payload"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "t", item["title"])
	assert.Equal(t, "OPEN", item["status"])

	rec = doRequest(router, http.MethodGet, "/bets?limit=lots", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBetIDMustBeNumeric(t *testing.T) {
	router, _ := setupRouter(t)
	rec := doRequest(router, http.MethodGet, "/bets/abc", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(new(mockOperations), nil, func(ctx context.Context) error { return nil })

	rec := doRequest(router, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}
