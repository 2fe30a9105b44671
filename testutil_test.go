package fdlc

// tag mints a Tag with a unique ID and an empty span, for tests that
// don't care about source positions but do care about label
// uniqueness.
var nextTestTagID = 0

func tag() Tag {
	nextTestTagID++
	return Tag{ID: nextTestTagID}
}

func num(n int) Number   { return Number{Value: n, Tg: tag()} }
func boolean(b bool) Boolean { return Boolean{Value: b, Tg: tag()} }
func id(name string) Id  { return Id{Name: name, Tg: tag()} }
