package commands

import (
	"rtchat/internal/domain"
)

// botIdentity resolves the secret from config/env or the sealed credential.
func botIdentity() (domain.BotIdentity, error) {
	if appCtx.Config.Secret != "" {
		return appCtx.BotIdentity("")
	}
	pass, err := resolvePassphrase()
	if err != nil {
		return domain.BotIdentity{}, err
	}
	return appCtx.BotIdentity(pass)
}
