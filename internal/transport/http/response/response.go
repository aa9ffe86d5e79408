package response

// Resp is the envelope of every API answer. Data is never null.
type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

var empty = struct{}{}

func OK(data any) Resp {
	if data == nil {
		data = empty
	}
	return Resp{Code: CodeOK, Msg: Message(CodeOK), Data: data}
}

// Error builds a failure envelope; msg overrides the default text for code.
func Error(code int, msg string) Resp {
	if msg == "" {
		msg = Message(code)
	}
	return Resp{Code: code, Msg: msg, Data: empty}
}
