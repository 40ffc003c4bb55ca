package domain

// DefaultIssuer is the issuer label the bot signs its tokens with.
const DefaultIssuer = "rt-chat-bot"

// BotIdentity is the shared secret and issuer label of one bot.
// It is supplied once at construction and never changes afterwards.
type BotIdentity struct {
	Issuer string
	Secret []byte
}

// Fingerprint is a short, display-safe digest of a secret.
type Fingerprint string
