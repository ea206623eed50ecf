package ncerr

// Option is an Error option function
type Option func(*Error)

func WithMessage(msg string) Option         { return func(e *Error) { e.Message = msg } }
func WithType(t Type) Option                { return func(e *Error) { e.Type = t } }
func WithSeverity(s Severity) Option        { return func(e *Error) { e.Severity = s } }
func WithAppTag(tag string) Option          { return func(e *Error) { e.AppTag = tag } }
func WithPath(path string) Option           { return func(e *Error) { e.Path = path } }
func WithBadAttribute(name string) Option   { return func(e *Error) { e.info().BadAttribute = name } }
func WithBadElement(name string) Option     { return func(e *Error) { e.info().BadElement = name } }
func WithBadNamespace(nsURI string) Option  { return func(e *Error) { e.info().BadNamespace = nsURI } }
func WithSessionID(sessionID string) Option { return func(e *Error) { e.info().SessionID = sessionID } }
