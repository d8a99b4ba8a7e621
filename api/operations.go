package api

import (
	"context"

	"betpool/application"
	"betpool/domain/entities"
	"betpool/domain/interfaces"

	"github.com/shopspring/decimal"
)

// Operations is the subset of the application the HTTP surface calls
type Operations interface {
	CreateUser(ctx context.Context, params interfaces.CreateUserParams) application.Result[*entities.User]
	Login(ctx context.Context, phone, password string) application.Result[*application.LoginPayload]
	SoftDeleteUser(ctx context.Context, actorID int64, phone string) application.Result[*entities.User]
	VerifyToken(ctx context.Context, token string) application.Result[int64]

	GetWallet(ctx context.Context, userID int64, historyLimit int) application.Result[*entities.WalletSummary]

	CreateBet(ctx context.Context, params entities.CreateBetParams) application.Result[*entities.BetDetail]
	UpdateBet(ctx context.Context, actorID, betID int64, patch entities.BetPatch) application.Result[*entities.BetDetail]
	DeleteBet(ctx context.Context, actorID, betID int64) application.Result[*application.BetRef]
	JoinBet(ctx context.Context, userID, betID, optionID int64, stake decimal.Decimal) application.Result[*entities.Participation]
	ResolveBet(ctx context.Context, judgeID, betID, winningOptionID int64) application.Result[*entities.SettlementResult]
	GetBet(ctx context.Context, betID int64) application.Result[*entities.BetDetail]
	ListBets(ctx context.Context, filter entities.BetFilter) application.Result[[]application.BetListItem]
}

var _ Operations = (*application.App)(nil)
