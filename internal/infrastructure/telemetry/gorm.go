package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InstrumentGorm registers the otelgorm plugin so every repository and
// oracle query becomes a child span of the request span. Query variables
// are always excluded, party balances and invoice amounts do not belong
// in trace storage.
func InstrumentGorm(db *gorm.DB, dbName string, log *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	log.Info("Database tracing enabled", zap.String("db_name", dbName))
	return nil
}
