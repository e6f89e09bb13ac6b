// Package config loads tool configuration from command line flags and an
// optional INI file, driven by struct tags: `name`, `default`, `help` and
// `required`. Flags take precedence over the INI file, which takes
// precedence over defaults.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// CheckVersion prints version and exits when --version is given.
func CheckVersion(version string) {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" {
			fmt.Println(version)
			os.Exit(0)
		}
	}
}

type fieldInfo struct {
	value        reflect.Value
	name         string
	help         string
	required     bool
	defaultValue string
}

// Load populates cfg (a pointer to a struct) from args and, when
// --config points at a file or ./config.ini exists, from that INI file.
func Load(cfg interface{}, args []string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("cfg must be a pointer to a struct")
	}
	v = v.Elem()

	fields, err := parseFields(v)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.defaultValue != "" {
			if err := setField(f, f.defaultValue); err != nil {
				return fmt.Errorf("default for %q: %w", f.name, err)
			}
		}
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to config file")

	flagValues := make(map[string]*string, len(fields))
	for _, f := range fields {
		raw := new(string)
		fs.StringVar(raw, f.name, "", f.help)
		flagValues[f.name] = raw
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		return err
	}

	if configPath == "" {
		if _, err := os.Stat("./config.ini"); err == nil {
			configPath = "./config.ini"
		}
	}
	if configPath != "" {
		if err := loadINI(configPath, fields); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, f := range fields {
		if set[f.name] {
			if err := setField(f, *flagValues[f.name]); err != nil {
				return fmt.Errorf("flag --%s: %w", f.name, err)
			}
		}
	}

	for _, f := range fields {
		if f.required && f.value.IsZero() {
			return fmt.Errorf("required option --%s is not set", f.name)
		}
	}
	return nil
}

func parseFields(v reflect.Value) ([]*fieldInfo, error) {
	t := v.Type()
	fields := make([]*fieldInfo, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		name := sf.Tag.Get("name")
		if name == "" {
			name = strings.ToLower(sf.Name)
		}
		fields = append(fields, &fieldInfo{
			value:        fv,
			name:         name,
			help:         sf.Tag.Get("help"),
			required:     sf.Tag.Get("required") == "true",
			defaultValue: sf.Tag.Get("default"),
		})
	}
	return fields, nil
}

func setField(f *fieldInfo, raw string) error {
	switch f.value.Kind() {
	case reflect.String:
		f.value.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid bool %q", raw)
		}
		f.value.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		f.value.SetInt(n)
	case reflect.Slice:
		if f.value.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", f.value.Type())
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		f.value.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported field type %s", f.value.Type())
	}
	return nil
}

func loadINI(path string, fields []*fieldInfo) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	byName := make(map[string]*fieldInfo, len(fields))
	for _, f := range fields {
		byName[f.name] = f
	}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: expected key = value", path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"`)

		f, ok := byName[key]
		if !ok {
			continue
		}
		if err := setField(f, value); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}
