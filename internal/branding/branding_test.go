package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if CLIName() != "maa" {
		t.Errorf("CLIName() = %q, want %q", CLIName(), "maa")
	}
	if HomeDir() != ".maa-cli" {
		t.Errorf("HomeDir() = %q, want %q", HomeDir(), ".maa-cli")
	}
	if TemplateBranch() != "main" {
		t.Errorf("TemplateBranch() = %q, want %q", TemplateBranch(), "main")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("proxy"); got != "MAA_PROXY" {
		t.Errorf("EnvVar(proxy) = %q, want %q", got, "MAA_PROXY")
	}
}
