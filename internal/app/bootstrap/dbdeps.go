// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chapterhub/internal/app/store/directory"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Directory is nil when no directory DSN is configured.
	Directory *directory.Directory

	// Services is allocated by ConnectDB and filled by Startup. DBDeps is
	// passed by value between hooks, so the pointer is what they share.
	Services *Services
}
