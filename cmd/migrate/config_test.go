package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationsDir(t *testing.T) {
	cases := []struct {
		name string
		env  string
		want string
	}{
		{name: "default", env: "", want: "db/migrations"},
		{name: "env override", env: "/srv/shelfrate/migrations", want: "/srv/shelfrate/migrations"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_ = os.Unsetenv("MIGRATIONS_DIR")
			if tc.env != "" {
				os.Setenv("MIGRATIONS_DIR", tc.env)
				t.Cleanup(func() { _ = os.Unsetenv("MIGRATIONS_DIR") })
			}

			if got := migrationsDir(); got != tc.want {
				t.Fatalf("migrationsDir() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	envFile := filepath.Join(tmp, ".env")
	if err := os.WriteFile(envFile, []byte("DB_DSN=postgres://file/shelfrate\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	os.Setenv("DB_DSN", "postgres://runtime/shelfrate")
	t.Cleanup(func() { _ = os.Unsetenv("DB_DSN") })

	cwd, _ := os.Getwd()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	loadEnvFiles()

	if got := os.Getenv("DB_DSN"); got != "postgres://runtime/shelfrate" {
		t.Fatalf("runtime env should win over .env, got %q", got)
	}
}
