package services

import (
	"math/big"
	"sort"

	"betpool/domain/entities"

	"github.com/shopspring/decimal"
)

// CalculateSettlement distributes the pool of a resolved bet.
//
// Each winner gets back their stake plus a share of the losing pool in
// proportion to their stake, floored to the cent. Cents lost to flooring go
// one at a time to winners ordered by stake descending, then join order, so
// the payouts always sum to the pool. When nobody backed the winning option
// the policy decides between forfeiting and refunding every stake.
func CalculateSettlement(participations []*entities.Participation, winningOptionID int64, policy entities.NoWinnerPolicy) *entities.SettlementPlan {
	if !policy.IsValid() {
		policy = entities.NoWinnerPolicyForfeit
	}

	plan := &entities.SettlementPlan{
		Pool:        decimal.Zero,
		WinningPool: decimal.Zero,
		LosingPool:  decimal.Zero,
		Forfeited:   decimal.Zero,
		Payouts:     []entities.Payout{},
	}

	var winners []*entities.Participation
	for _, p := range participations {
		plan.Pool = plan.Pool.Add(p.Stake)
		if p.IsWinner(winningOptionID) {
			winners = append(winners, p)
			plan.WinningPool = plan.WinningPool.Add(p.Stake)
		}
	}
	plan.LosingPool = plan.Pool.Sub(plan.WinningPool)

	if len(winners) == 0 {
		plan.Policy = policy
		if policy == entities.NoWinnerPolicyRefund {
			for _, p := range participations {
				plan.Payouts = append(plan.Payouts, entities.Payout{
					ParticipationID: p.ID,
					UserID:          p.UserID,
					Stake:           p.Stake,
					Amount:          p.Stake,
					TransactionType: entities.TransactionTypeBetRefund,
				})
			}
		} else {
			plan.Forfeited = plan.Pool
		}
		return plan
	}

	winningCents := toCents(plan.WinningPool)
	losingCents := toCents(plan.LosingPool)

	amounts := make([]*big.Int, len(winners))
	distributed := new(big.Int)
	for i, w := range winners {
		stakeCents := toCents(w.Stake)
		share := new(big.Int).Mul(stakeCents, losingCents)
		share.Quo(share, winningCents)
		amounts[i] = share.Add(share, stakeCents)
		distributed.Add(distributed, amounts[i])
	}

	remainder := new(big.Int).Sub(toCents(plan.Pool), distributed)
	if remainder.Sign() > 0 {
		order := make([]int, len(winners))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			wa, wb := winners[order[a]], winners[order[b]]
			if c := wa.Stake.Cmp(wb.Stake); c != 0 {
				return c > 0
			}
			if !wa.JoinedAt.Equal(wb.JoinedAt) {
				return wa.JoinedAt.Before(wb.JoinedAt)
			}
			return wa.ID < wb.ID
		})

		one := big.NewInt(1)
		for i := 0; remainder.Sign() > 0; i = (i + 1) % len(order) {
			amounts[order[i]].Add(amounts[order[i]], one)
			remainder.Sub(remainder, one)
		}
	}

	for i, w := range winners {
		plan.Payouts = append(plan.Payouts, entities.Payout{
			ParticipationID: w.ID,
			UserID:          w.UserID,
			Stake:           w.Stake,
			Amount:          decimal.NewFromBigInt(amounts[i], -2),
			TransactionType: entities.TransactionTypeBetPayout,
		})
	}
	return plan
}

func toCents(amount decimal.Decimal) *big.Int {
	return amount.Shift(2).Truncate(0).BigInt()
}
