package iocli

// IO ввод и вывод команд клиента
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadPassword читает строку без эха, если stdin это терминал
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
