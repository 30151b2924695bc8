package dice

import "go.uber.org/zap"

// Roller is a Source that logs every expression it rolls at debug level.
// Raw Intn draws pass through unlogged.
type Roller struct {
	Source
	log *zap.Logger
}

// NewRoller wraps src.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{Source: src, log: logger.Named("dice")}
}

// Roll evaluates expr against the wrapped Source.
func (r *Roller) Roll(expr Expression) RollResult {
	res := expr.Roll(r.Source)
	if ce := r.log.Check(zap.DebugLevel, "dice roll"); ce != nil {
		ce.Write(
			zap.Stringer("expression", expr),
			zap.Ints("dice", res.Dice),
			zap.Int("modifier", res.Modifier),
			zap.Int("total", res.Total()),
		)
	}
	return res
}
