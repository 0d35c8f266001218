package entity

// SimulatorMode определяет тариф тренажёра: free, paid или study.
// Режим управляет потолком количества вопросов, видимостью правильных
// ответов до отправки и набором доступных курсов.
type SimulatorMode string

const (
	ModeFree  SimulatorMode = "free"
	ModePaid  SimulatorMode = "paid"
	ModeStudy SimulatorMode = "study"
)

// FreeModeMaxQuestions - жёсткий потолок количества вопросов в бесплатном режиме
const FreeModeMaxQuestions = 10

// DefaultQuestionCount используется, когда запрос не указал количество вопросов
const DefaultQuestionCount = 10

// FreeCoursePrefixes - предметные префиксы, доступные в бесплатном режиме
var FreeCoursePrefixes = []string{"MTH", "CHM", "PHY"}

// ParseSimulatorMode разбирает значение query-параметра simulator.
// Пустая строка и любое неизвестное значение трактуются как free.
func ParseSimulatorMode(raw string) SimulatorMode {
	switch SimulatorMode(raw) {
	case ModePaid:
		return ModePaid
	case ModeStudy:
		return ModeStudy
	default:
		return ModeFree
	}
}

// ExposesAnswers возвращает true, если режим отдаёт правильный ответ
// и решение до отправки (самопроверка в режиме study)
func (m SimulatorMode) ExposesAnswers() bool {
	return m == ModeStudy
}

// RequiresPayment возвращает true, если режим доступен только после оплаты
func (m SimulatorMode) RequiresPayment() bool {
	return m == ModePaid
}
