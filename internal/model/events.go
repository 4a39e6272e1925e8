package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Directory / router events
	EventUserCreated          EventType = "user_created"
	EventUserDeleted          EventType = "user_deleted"
	EventMirrorMaterialized   EventType = "mirror_materialized"
	EventGameConfigured       EventType = "game_configured"
	EventOperatorConfigured   EventType = "operator_configured"
	EventOwnershipTransferred EventType = "ownership_transferred"

	// Game rule / room events
	EventGameRoomCreated    EventType = "game_room_created"
	EventPlayerJoined       EventType = "player_joined"
	EventPlayerLeft         EventType = "player_left"
	EventTokenRegistered    EventType = "token_registered"
	EventPaid               EventType = "paid"
	EventEarned             EventType = "earned"
	EventGameEnded          EventType = "game_ended"
	EventGameClosed         EventType = "game_closed"
	EventPlatformFeeChanged EventType = "platform_fee_changed"
	EventFeeToChanged       EventType = "fee_to_changed"

	// Ledger / proxy events
	EventTransfer        EventType = "transfer"
	EventAssetRegistered EventType = "asset_registered"
	EventUpgraded        EventType = "upgraded"
	EventAdminChanged    EventType = "admin_changed"
	EventInitialized     EventType = "initialized"
)

// Event is a record emitted by a component during a committed call. Origin
// is the external caller that started the call, however deep the emitter.
type Event struct {
	Type      EventType
	Emitter   Address
	Origin    Address
	Timestamp time.Time
	Payload   any
}

// UserPayload contains data for user created/deleted events
type UserPayload struct {
	Username string
	Mirror   Address
	Owner    Address
	Tier     uint8
}

// MirrorMaterializedPayload records the balance reconciled at materialization
type MirrorMaterializedPayload struct {
	Mirror          Address
	PrefundedNative Amount
}

// ConfiguredPayload contains data for whitelist and operator configuration events
type ConfiguredPayload struct {
	Subject Address
	Enabled bool
}

// OwnershipTransferredPayload contains data for ownership transfers
type OwnershipTransferredPayload struct {
	PreviousOwner Address
	NewOwner      Address
}

// GameRoomCreatedPayload contains data for room creation events
type GameRoomCreatedPayload struct {
	GameID     string
	RoomNumber uint64
	Room       Address
	Deadline   time.Time
}

// PlayerPayload contains data for player joined/left events
type PlayerPayload struct {
	GameID     string
	RoomNumber uint64
	Username   string
}

// TokenRegisteredPayload contains data for token registration on a room
type TokenRegisteredPayload struct {
	Room  Address
	Asset Address
}

// SettlementPayload contains data for pay/earn events
type SettlementPayload struct {
	GameID     string
	RoomNumber uint64
	Username   string
	Asset      Address
	Amount     Amount
	Fee        Amount
}

// RoomEndedPayload contains data for game ended/closed events
type RoomEndedPayload struct {
	GameID     string
	RoomNumber uint64
	Recipient  Address // zero for voluntary end
}

// FeePayload contains data for platform fee changes
type FeePayload struct {
	PlatformFee uint64
	FeeTo       Address
}

// TransferPayload contains data for ledger transfers and mints
type TransferPayload struct {
	Asset  Address
	From   Address
	To     Address
	Amount Amount
}

// AssetPayload contains data for asset registration
type AssetPayload struct {
	Asset  Address
	Symbol string
}

// UpgradePayload contains data for proxy upgrade and admin changes
type UpgradePayload struct {
	Slot  Address
	Logic string
	Admin Address
}
