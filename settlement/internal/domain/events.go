package domain

const (
	EVENT_BALANCE_UPDATED = "balance:updated"
)

func UserTopic(userID string) string {
	return "user:" + userID
}

// BalanceChanged is emitted once per owning user after a mutation commits.
// Network and NetworkBalance name the first affected network; Networks holds
// the balance of every network the mutation touched (both sides of a bridge).
type BalanceChanged struct {
	UserID         string            `json:"user_id"`
	Network        string            `json:"network"`
	GlobalBalance  string            `json:"global_balance"`
	NetworkBalance string            `json:"network_balance"`
	Networks       map[string]string `json:"networks"`
	Reference      string            `json:"reference"`
}
