package providers

import (
	"github.com/samber/do/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/auth"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/config"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/logger"
)

// AuthKey wraps the admin token key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the admin token key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Admin.TokenKey = key

	log.Info("Admin token key loaded",
		"token_duration", cfg.Admin.TokenDuration,
		"admin_enabled", cfg.Admin.PasswordHash != "",
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Admin.PasswordHash, cfg.Admin.TokenDuration)
}
