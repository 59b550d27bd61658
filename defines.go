package fieldset

// constants for selection parameter handling
const (
	DefaultFieldsParamName = "fields"
	DefaultEmbedParamName  = "embedd"

	PathSeparator      = "."
	SelectionSeparator = ","
)

// constants for the `marshal` struct tag grammar
const (
	MarshalTagPrefix = "marshal"

	AttributeSubTagPrefix   = "attribute"
	DefaultSubTagPrefix     = "default"
	FormatSubTagPrefix      = "format"
	MemberSubTagPrefix      = "member"
	PlainKeySubTagPrefix    = "plainkey"
	PlainFormatSubTagPrefix = "plainformat"
	AllowNullTagFlag        = "allownull"

	SkipTagValue = "-"

	SubTagScopeDelimiter   = byte('\'')
	KeyValueTagDelimiter   = ":"
	TagSegmentSeparator    = " "
	FormatterNameSeparator = "|"
)

// Formatter name constants for built in formatters.
const (
	StringFormatterName  = "string"
	IntegerFormatterName = "int"
	FloatFormatterName   = "float"
	BooleanFormatterName = "bool"
	UUIDFormatterName    = "uuid"
	TimeFormatterName    = "time"
)

// Mime Type constants for content types and encodings.
const (
	ContentTypeApplicationJSON string = "application/json"
	ContentTypeDelimiter              = ";"
)
