package domain

// Ruleset — набор правил маскирования, привязанный к connector.
type Ruleset struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ConnectorID int    `json:"connector_id"`
}

// Connector — подключение к источнику данных.
type Connector struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// JobKind — тип job на engine.
type JobKind string

const (
	// JobKindMasking — masking job.
	JobKindMasking JobKind = "masking"

	// JobKindProfile — profile job.
	JobKindProfile JobKind = "profile"
)

// ParseJobKind парсит строку в JobKind. Неизвестные значения дают masking.
func ParseJobKind(s string) JobKind {
	switch s {
	case "profile":
		return JobKindProfile
	default:
		return JobKindMasking
	}
}

// Job — настроенная единица работы над ruleset.
//
// Имя job уникально в пространстве имён engine; уникальность
// проверяется клиентом перед созданием.
type Job struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	RulesetID int     `json:"ruleset_id"`
	Kind      JobKind `json:"kind"`
}

// ScriptSpec — pre/post скрипт masking job.
type ScriptSpec struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
}

// MaskingOptions — параметры выполнения masking job для баз данных.
type MaskingOptions struct {
	BatchUpdate     bool       `json:"batchUpdate"`
	CommitSize      int        `json:"commitSize"`
	DropConstraints bool       `json:"dropConstraints"`
	Prescript       ScriptSpec `json:"prescript"`
	Postscript      ScriptSpec `json:"postscript"`
}

// JobSpec — запрос на создание masking job.
type JobSpec struct {
	Name            string
	RulesetID       int
	Description     string
	FeedbackSize    int
	OnTheFlyMasking bool
	Options         MaskingOptions
}

// RulesetSpec — запрос на создание database ruleset.
type RulesetSpec struct {
	Name        string
	ConnectorID int
}
