package runner

import "signal_trader/internal/models"

func positionDirection(side models.PositionSide) (Direction, bool) {
	switch side {
	case models.PositionLong:
		return Long, true
	case models.PositionShort:
		return Short, true
	}
	return 0, false
}

// ValidateIntent сверяет намерение с текущей позицией. Порядок правил важен:
// открытие против существующей позиции запрещено, закрытие требует позиции
// того же направления. Переворот позиции только через явное закрытие.
func ValidateIntent(intent Intent, pos models.PositionState) error {
	dir, hasPos := positionDirection(pos.Side)

	if !intent.IsClose() {
		if hasPos && dir != intent.Direction {
			return reject(ReasonOppositeDirectionOpen,
				"%s requested while %s position %s is open", intent, pos.Side, pos.Size)
		}
		return nil
	}

	if !hasPos {
		// позиции нет вовсе — отдельный код, чтобы отличать "уже закрыто" от "не та сторона"
		return reject(ReasonNoPosition, "%s requested with no open position", intent)
	}
	if dir != intent.Direction {
		return reject(ReasonNoMatchingPosition,
			"%s requested while %s position is open", intent, pos.Side)
	}
	return nil
}
