package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

// CronSecretHeader carries the shared secret used by external schedulers.
const CronSecretHeader = "X-Cron-Secret"

// CronOrAmbassador admits scheduler calls presenting the shared secret, or an
// ambassador bearer token. An empty secret disables the header path.
func CronOrAmbassador(secret string, validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if provided := c.GetHeader(CronSecretHeader); provided != "" {
			if secret != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1 {
				c.Next()
				return
			}
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid cron secret"))
			c.Abort()
			return
		}

		token, err := bearerToken(c, false)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if claims.Role != models.RoleAmbassador {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}
