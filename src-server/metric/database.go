package metric

import (
	"context"
	"time"

	"stellarbot/src-server/model"
	"stellarbot/src-server/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.PremiumCode)(nil)).
		Where("user_id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
