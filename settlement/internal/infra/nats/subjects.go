package nats

type SubjType uint8

// .core. - nats core request/reply
var Subjects = [...]string{
	"settlement.core.ping",
	"settlement.core.provision",
	"settlement.core.get_wallet",
	"settlement.core.send",
	"settlement.core.bridge",
	"settlement.core.mint",
	"settlement.core.freeze",
	"settlement.core.unfreeze",
	"settlement.core.get_transaction",
	"settlement.core.list_transactions",
}

const (
	SubjPing SubjType = iota
	SubjProvision
	SubjGetWallet
	SubjSend
	SubjBridge
	SubjMint
	SubjFreeze
	SubjUnfreeze
	SubjGetTransaction
	SubjListTransactions
)

func (s SubjType) String() string {
	if int(s) >= len(Subjects) {
		return ""
	}
	return Subjects[s]
}

const (
	CORE_WILDCARD = "settlement.core.*"
	QUEUE_GROUP   = "settlement_workers"

	NOTIFICATIONS_SUBJECT_PREFIX = "notifications."
	SubjNotifyBalance            = NOTIFICATIONS_SUBJECT_PREFIX + "balance_updated"

	HEADER_EVENT = "Event"
)

// for nats jetstream
func NewMsgId(reference, userID string) string {
	return reference + "_" + userID
}
