package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// envContract holds the embedded .env.example contract. The contract is the
// source of truth for required variable NAMES; no env key is hardcoded here.
var envContract string

// Init sets the embedded .env.example contract string. Must be called once at
// startup before GetConfig().
func Init(contract string) {
	envContract = contract
}

// Config is the typed view of the environment. Field names map to env keys by
// SCREAMING_SNAKE derivation:
//
//	MongoDbContent -> MONGO_DB_CONTENT
//	NodeEnv        -> NODE_ENV
type Config struct {
	NodeEnv string
	Port    int

	// MongoDB configuration
	MongoUri       string
	MongoDbContent string
	MongoDbApp     string
	MongoDbAppDev  string

	// Auth configuration
	JwtSecret string

	// Application configuration
	AllowedOrigins string

	// Deployment metadata (optional, may be empty locally)
	GitCommitSha string
	DeployedAt   string
}

// GetConfig loads .env (if present), overlays the process environment,
// validates the result against the embedded contract, and returns the typed
// Config. Missing required keys fail fast with the full list.
func GetConfig() Config {
	const envPath = ".env"
	const allowEmptyValues = false

	envMap := make(map[string]string)

	// .env is optional: cloud deployments inject real env vars instead
	fileMap, err := parseEnvFile(envPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fatal(fmt.Errorf("failed to parse env file %q: %w", envPath, err))
		}
	} else {
		for k, v := range fileMap {
			envMap[k] = v
		}
	}

	// Process env overrides the file so runtime config always wins
	for _, raw := range os.Environ() {
		pair := strings.SplitN(raw, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}

	if envContract == "" {
		fatal(fmt.Errorf("config.Init() must be called before GetConfig() - no embedded contract set"))
	}
	requiredKeys, err := readContractKeys(envContract)
	if err != nil {
		fatal(fmt.Errorf("failed to read embedded contract: %w", err))
	}
	if len(requiredKeys) == 0 {
		fatal(fmt.Errorf("embedded contract contained no keys"))
	}

	if err := validateEnvMap(requiredKeys, envMap, envPath, allowEmptyValues); err != nil {
		fatal(err)
	}

	cfg, err := loadStructFromEnvMap[Config](envMap)
	if err != nil {
		fatal(err)
	}
	return cfg
}

func validateEnvMap(requiredKeys []string, envMap map[string]string, envPath string, allowEmpty bool) error {
	missing := make([]string, 0)
	for _, k := range requiredKeys {
		v, ok := envMap[k]
		if !ok || (!allowEmpty && v == "") {
			missing = append(missing, k)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		var b strings.Builder
		fmt.Fprintf(&b, "❌ .env does not satisfy contract (%d missing)\n", len(missing))
		fmt.Fprintf(&b, "contract: embedded .env.example\n")
		fmt.Fprintf(&b, "env file: %s\n", envPath)
		fmt.Fprintf(&b, "allowEmptyValues: %v\n", allowEmpty)
		b.WriteString("missing:\n")
		for _, k := range missing {
			fmt.Fprintf(&b, "  - %s\n", k)
		}
		b.WriteString("fix: add these keys to your .env (or set them via your runtime env).\n")
		return fmt.Errorf(b.String())
	}
	return nil
}

// readContractKeys extracts the required variable names from the embedded
// .env.example contract.
func readContractKeys(contract string) ([]string, error) {
	keys := make([]string, 0, 16)
	seen := make(map[string]bool, 16)

	sc := bufio.NewScanner(strings.NewReader(contract))
	for sc.Scan() {
		k, _, ok := parseEnvLine(sc.Text())
		if !ok {
			continue
		}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// parseEnvFile parses a .env file into a KEY -> VALUE map. Comments and blank
// lines are skipped; simple surrounding quotes are stripped.
func parseEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]string, 16)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		k, v, ok := parseEnvLine(sc.Text())
		if !ok {
			continue
		}
		out[k] = stripQuotes(v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseEnvLine(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	if strings.HasPrefix(line, "export ") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	}
	i := strings.IndexByte(line, '=')
	if i <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[i+1:]), true
}

func stripQuotes(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// loadStructFromEnvMap fills struct fields by converting field name ->
// SCREAMING_SNAKE env key.
func loadStructFromEnvMap[T any](envMap map[string]string) (T, error) {
	var out T
	val := reflect.ValueOf(&out).Elem()
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		sf := typ.Field(i)
		fv := val.Field(i)

		envKey := camelToScreamingSnake(sf.Name)
		raw := envMap[envKey]

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)

		case reflect.Bool:
			fv.SetBool(isTruthy(raw))

		case reflect.Int:
			if raw == "" {
				fv.SetInt(0)
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return out, fmt.Errorf("%s must be int (got %q)", envKey, raw)
			}
			fv.SetInt(int64(n))

		default:
			return out, fmt.Errorf("unsupported field type %s for %s", fv.Kind(), sf.Name)
		}
	}
	return out, nil
}

func isTruthy(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "1" || s == "true" || s == "yes" || s == "y" || s == "on"
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

func camelToScreamingSnake(s string) string {
	withUnderscores := camelBoundary.ReplaceAllString(s, `${1}_${2}`)
	return strings.ToUpper(withUnderscores)
}

// fatal prints the error and exits (fail fast).
func fatal(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
