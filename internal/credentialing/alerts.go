package credentialing

import (
	"time"

	"github.com/pdclabs/chairview/internal/store"
)

// Evidence windows.
const (
	recentPaidWindow = 90 * 24 * time.Hour
	expiringWindow   = 30 * 24 * time.Hour
	staleWindow      = 30 * 24 * time.Hour
)

// computeAlerts derives the alert set for one record against now. Unparseable
// dates behave as absent: every alert that needs them is suppressed.
func computeAlerts(doc statusDoc, now time.Time, paidNPIs map[string]struct{}) []string {
	var alerts []string

	if doc.Status == StatusOON {
		if _, paid := paidNPIs[doc.ProviderNPI]; paid {
			alerts = append(alerts, AlertNetworkMismatch)
		}
	}

	if termDate := store.ParseTime(doc.TermDate); termDate != nil {
		if !termDate.Before(now) && !termDate.After(now.Add(expiringWindow)) {
			alerts = append(alerts, AlertExpiringSoon)
		}
	}

	if verifiedAt := store.ParseTime(doc.LastVerifiedAt); verifiedAt != nil {
		if verifiedAt.Before(now.Add(-staleWindow)) {
			alerts = append(alerts, AlertStaleData)
		}
	}

	if doc.Status == StatusPending {
		if effective := store.ParseTime(doc.EffectiveDate); effective != nil && effective.After(now) {
			alerts = append(alerts, AlertPendingEffective)
		}
	}

	return alerts
}
