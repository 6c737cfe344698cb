package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	yamlv3 "go.yaml.in/yaml/v3"
)

// configKeys 返回 Config 的全部 key（json tag），顺序与字段定义一致。
func configKeys() []string {
	typ := reflect.TypeFor[Config]()
	keys := make([]string, 0, typ.NumField())
	for i := range typ.NumField() {
		if key := configTagName(typ.Field(i)); key != "" {
			keys = append(keys, key)
		}
	}

	return keys
}

func configTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

// toMap 借助 mapstructure 把配置结构体展开为 key → value。
func toMap(cfg Config) (map[string]any, error) {
	out := make(map[string]any)
	if err := decode(cfg, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// fromMap 把合并后的 map 解码为 Config，允许字符串形式的数字、布尔、时长与逗号分隔列表。
func fromMap(data map[string]any) (*Config, error) {
	var cfg Config
	if err := decode(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func decode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:           output,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// parseConfigBytes 按扩展名选择解析器：.json 使用 JSON，其余按 YAML 处理。
func parseConfigBytes(path string, content []byte) (map[string]any, error) {
	out := make(map[string]any)
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(content, &out)
	} else {
		err = yamlv3.Unmarshal(content, &out)
	}
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool)
	for _, key := range configKeys() {
		known[key] = true
	}
	for key := range out {
		if !known[key] {
			return nil, fmt.Errorf("unknown config key %q", key)
		}
	}

	return out, nil
}
