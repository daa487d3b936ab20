package percentencode_test

import (
	"fmt"

	"github.com/urlcore/whaturl/percentencode"
)

func ExampleUTF8PercentEncode() {
	fmt.Println(percentencode.UTF8PercentEncode("foo bar?", percentencode.NON_ALPHANUMERIC))
	// Output: foo%20bar%3F
}

func ExamplePercentDecode() {
	s, _ := percentencode.PercentDecodeString("foo%20bar%3f").DecodeUTF8Strict()
	fmt.Println(s)
	// Output: foo bar?
}

func ExamplePercentEncodeByte() {
	fmt.Println(percentencode.PercentEncodeByte(' '))
	// Output: %20
}

func ExampleAsciiSet_Add() {
	query := percentencode.CONTROLS.Add(' ').Add('"').Add('#').Add('<').Add('>')
	fmt.Println(query.ShouldPercentEncode('#'), query.ShouldPercentEncode('a'))
	// Output: true false
}
