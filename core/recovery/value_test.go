package recovery

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestObjectKeyOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("z", 1)
	obj.Set("a", 2)
	obj.Set("z", 3)

	if got := obj.Keys(); len(got) != 2 || got[0] != "z" || got[1] != "a" {
		t.Fatalf("Keys() = %v", got)
	}
	if v, _ := obj.Get("z"); v != 3 {
		t.Errorf("z = %v, want 3", v)
	}
	keys := obj.Keys()
	keys[0] = "mutated"
	if obj.Keys()[0] != "z" {
		t.Error("Keys should return a copy")
	}
}

func TestDecodePreservesOrderAndNumbers(t *testing.T) {
	v, err := Decode(`{"b":1.50,"a":[true,null,"<x>"],"c":{"y":1,"x":2}}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj := v.(*Object)
	if got := obj.String(); got != `{"b":1.50,"a":[true,null,"<x>"],"c":{"y":1,"x":2}}` {
		t.Errorf("String() = %s", got)
	}
	b, _ := obj.Get("b")
	if _, ok := b.(json.Number); !ok {
		t.Errorf("number decoded as %T", b)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		``,
		`{"a":1} trailing`,
		`{"a":`,
		`{"a":1,}`,
	}
	for _, in := range tests {
		_, err := Decode(in)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("Decode(%q) error = %v, want *DecodeError", in, err)
			continue
		}
		if de.Text != in {
			t.Errorf("DecodeError.Text = %q, want %q", de.Text, in)
		}
	}
}

func TestObjectJSONRoundTrip(t *testing.T) {
	var obj Object
	if err := json.Unmarshal([]byte(`{"k2":"v","k1":[1]}`), &obj); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := json.Marshal(&obj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"k2":"v","k1":[1]}` {
		t.Errorf("Marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`[1]`), &obj); err == nil {
		t.Error("expected error decoding array into Object")
	}
}

func TestValidate(t *testing.T) {
	v, _ := Decode(`{"wholeTitle":null,"storyTopic":1,"hashtags":"x","pages":{}}`)
	if _, err := Validate(v, DefaultRequiredKeys()...); err != nil {
		t.Errorf("presence check should ignore value types, got %v", err)
	}

	_, err := Validate("str", KeyPages)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != "string" || ve.Missing[0] != KeyPages {
		t.Errorf("unexpected error %v", err)
	}
}
