package fix

import "testing"

func TestParseFIXStripsSessionTags(t *testing.T) {
	raw := []byte("8=FIX.4.4|35=d|55=USTB-2030-11-15|223=4.250|15=USD|10=000")
	got, err := ParseFIX(raw, SeparatorAuto)
	if err != nil {
		t.Fatal(err)
	}
	want := []TagValue{
		{Tag: 55, Value: []byte("USTB-2030-11-15")},
		{Tag: 223, Value: []byte("4.250")},
		{Tag: 15, Value: []byte("USD")},
	}
	assertTagValues(t, got, want)
}

func TestParseFIXSOHSeparator(t *testing.T) {
	raw := []byte("55=AAPL\x01223=4.250\x01")
	got, err := ParseFIX(raw, SeparatorAuto)
	if err != nil {
		t.Fatal(err)
	}
	want := []TagValue{
		{Tag: 55, Value: []byte("AAPL")},
		{Tag: 223, Value: []byte("4.250")},
	}
	assertTagValues(t, got, want)
}

func TestParseFIXNewlineSeparator(t *testing.T) {
	raw := []byte("55=AAPL\r\n223=4.250\n")
	got, err := ParseFIX(raw, SeparatorAuto)
	if err != nil {
		t.Fatal(err)
	}
	want := []TagValue{
		{Tag: 55, Value: []byte("AAPL")},
		{Tag: 223, Value: []byte("4.250")},
	}
	assertTagValues(t, got, want)
}

func TestParseFIXSkipsEmptyAndMalformed(t *testing.T) {
	raw := []byte("55=AAPL||=dangling|nope|223=4.250|")
	got, err := ParseFIX(raw, SeparatorPipe)
	if err != nil {
		t.Fatal(err)
	}
	want := []TagValue{
		{Tag: 55, Value: []byte("AAPL")},
		{Tag: 223, Value: []byte("4.250")},
	}
	assertTagValues(t, got, want)
}

func TestParseFIXEmptyInput(t *testing.T) {
	_, err := ParseFIX(nil, SeparatorAuto)
	if err != ErrEmptyInput {
		t.Fatalf("got %v, want ErrEmptyInput", err)
	}
}

func assertTagValues(t *testing.T, got, want []TagValue) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Tag != want[i].Tag || string(got[i].Value) != string(want[i].Value) {
			t.Fatalf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
