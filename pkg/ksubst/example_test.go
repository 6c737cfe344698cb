package ksubst_test

import (
	"fmt"

	"github.com/lwmacct/251215-go-pkg-ksubst/pkg/ksubst"
)

// Example_substitute 演示基本替换与检测。
func Example_substitute() {
	baseURL := "${protocol}://${hostname}/${endpoint}"
	fmt.Println(ksubst.IsTemplated(baseURL))

	vars := map[string]string{
		"protocol": "https",
		"hostname": "example.com",
		"endpoint": "login",
	}
	out, _ := ksubst.Substitute(baseURL, vars)
	fmt.Println(out)
	fmt.Println(ksubst.IsTemplated(out))

	// Output:
	// true
	// https://example.com/login
	// false
}

// Example_conditionalSuffix 演示后缀作为条件分隔符。
func Example_conditionalSuffix() {
	tmpl := "${ENV-}app.${DOMAIN}"

	out, _ := ksubst.Substitute(tmpl, map[string]string{"ENV": "staging", "DOMAIN": "example.com"})
	fmt.Println(out)

	out, _ = ksubst.Substitute(tmpl, map[string]string{"ENV": "", "DOMAIN": "example.com"})
	fmt.Println(out)

	// Output:
	// staging-app.example.com
	// app.example.com
}

// Example_validation 演示禁用字符校验。
func Example_validation() {
	_, err := ksubst.Substitute("${VAR}", map[string]string{"VAR": "a$b"})
	fmt.Println(err)

	// Output:
	// ksubst: variable value 'a$b' contains forbidden character '$'
}
