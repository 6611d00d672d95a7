package message

// Sink receives rendered text. *output.Formatter satisfies it.
type Sink interface {
	Print(s string)
	Println(s string)
}

// String renders m with alternative 0.
func String(m Message, args ...any) (string, error) {
	return m.Render(0, args...)
}

// Print renders m with alternative 0 and appends it to out without ending
// the line.
func Print(m Message, out Sink, args ...any) error {
	return AltPrint(m, 0, out, args...)
}

// Println renders m with alternative 0 and appends it to out as a
// complete line.
func Println(m Message, out Sink, args ...any) error {
	return AltPrintln(m, 0, out, args...)
}

// AltPrint renders m with the given alternative and appends it to out.
func AltPrint(m Message, alt int, out Sink, args ...any) error {
	s, err := m.Render(alt, args...)
	if err != nil {
		return err
	}
	out.Print(s)
	return nil
}

// AltPrintln renders m with the given alternative and appends it to out as
// a complete line.
func AltPrintln(m Message, alt int, out Sink, args ...any) error {
	s, err := m.Render(alt, args...)
	if err != nil {
		return err
	}
	out.Println(s)
	return nil
}
