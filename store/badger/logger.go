package badger

import (
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/tendermint/tendermint/libs/log"
)

// loggerAdapter routes badger internal logs to a tendermint logger.
type loggerAdapter struct {
	logger log.Logger
}

var _ badgerdb.Logger = (*loggerAdapter)(nil)

func (l *loggerAdapter) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *loggerAdapter) Warningf(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...), "level", "warning")
}

func (l *loggerAdapter) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *loggerAdapter) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
