package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Reconciler - точка восстановления переднего плана: запускается при
// каждом возврате приложения в foreground (и при старте процесса) и
// гарантирует верхнюю границу протухания, даже если все фоновые
// пробуждения были потеряны.
type Reconciler struct {
	tracking TrackingService
	logger   *logrus.Logger
}

func NewReconciler(tracking TrackingService, logger *logrus.Logger) *Reconciler {
	return &Reconciler{tracking: tracking, logger: logger}
}

// Run выполняет один проход выверки. Вызывается из колбэка жизненного
// цикла, поэтому ошибки логируются, а не эскалируются.
func (r *Reconciler) Run(ctx context.Context) {
	count, err := r.tracking.Reconcile(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Foreground reconciliation failed")
		return
	}
	if count > 0 {
		r.logger.WithField("confirmed", count).Info("Foreground reconciliation confirmed stale exits")
	}
}
