package di

import (
	"otms/internal/notification"
	"otms/transport/http"
)

// App bundles the long-lived components main owns the lifecycle of.
type App struct {
	HTTP  *http.HTTP
	Queue *notification.Queue
}
