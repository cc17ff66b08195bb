package manifest

import (
	"regexp"
	"strings"
)

// Finding is one violation of a rule.
type Finding struct {
	Rule     string `json:"rule"`
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

// Rule checks a single platform standard against one manifest. Applies
// reports whether the manifest is in scope at all.
type Rule struct {
	ID      string
	Name    string
	Applies func(m Manifest) bool
	Check   func(m Manifest) []string
}

// ApprovedRegistries are the only image sources allowed in the cluster.
var ApprovedRegistries = []string{
	"registry.bank.internal/",
	"quay.io/redhat-openshift-approved/",
}

// RequiredLabels must be present on every object.
var RequiredLabels = []string{
	"app.kubernetes.io/name",
	"app.kubernetes.io/version",
	"app.kubernetes.io/part-of",
	"environment",
	"managed-by",
}

// team-app-env, e.g. banking-team-credit-scoring-prod
var namePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-[a-z-]+-[a-z]+$`)

func isDeployment(m Manifest) bool { return m.Kind == "Deployment" }

func isWorkloadOrService(m Manifest) bool {
	return m.Kind == "Deployment" || m.Kind == "Service"
}

func everything(Manifest) bool { return true }

func isTrue(b *bool) bool { return b != nil && *b }

// Rules returns the standards in the order they are reported.
func Rules() []Rule {
	return []Rule{
		{ID: "01", Name: "Resource Limits", Applies: isDeployment, Check: checkResources},
		{ID: "02", Name: "Security Context", Applies: isDeployment, Check: checkSecurity},
		{ID: "03", Name: "Image Provenance", Applies: isDeployment, Check: checkImages},
		{ID: "04", Name: "Naming & Labels", Applies: everything, Check: checkNaming},
		{ID: "05", Name: "Logging & Observability", Applies: isWorkloadOrService, Check: checkObservability},
		{ID: "06", Name: "Health Probes", Applies: isDeployment, Check: checkProbes},
	}
}

func checkResources(m Manifest) []string {
	var problems []string
	for _, c := range m.containers() {
		for _, want := range []struct {
			values map[string]string
			key    string
			label  string
		}{
			{c.Resources.Requests, "cpu", "CPU requests"},
			{c.Resources.Requests, "memory", "memory requests"},
			{c.Resources.Limits, "cpu", "CPU limits"},
			{c.Resources.Limits, "memory", "memory limits"},
		} {
			if want.values[want.key] == "" {
				problems = append(problems, "container "+c.Name+": missing "+want.label)
			}
		}
	}
	return problems
}

func checkSecurity(m Manifest) []string {
	var problems []string
	pod := m.Spec.Template.Spec.SecurityContext
	if !isTrue(pod.RunAsNonRoot) {
		problems = append(problems, "missing pod runAsNonRoot")
	}
	if pod.SeccompProfile.Type != "RuntimeDefault" {
		problems = append(problems, "pod seccompProfile must be RuntimeDefault")
	}

	for _, c := range m.containers() {
		sc := c.SecurityContext
		if !isTrue(sc.RunAsNonRoot) {
			problems = append(problems, "container "+c.Name+": missing runAsNonRoot")
		}
		if !isTrue(sc.ReadOnlyRootFilesystem) {
			problems = append(problems, "container "+c.Name+": missing readOnlyRootFilesystem")
		}
		if !containsString(sc.Capabilities.Drop, "ALL") {
			problems = append(problems, "container "+c.Name+": capabilities must drop ALL")
		}
		// must be explicitly false; absent defaults to true in Kubernetes
		if sc.AllowPrivilegeEscalation == nil || *sc.AllowPrivilegeEscalation {
			problems = append(problems, "container "+c.Name+": allowPrivilegeEscalation must be false")
		}
	}
	return problems
}

func checkImages(m Manifest) []string {
	var problems []string
	for _, c := range m.containers() {
		image := c.Image
		if strings.HasSuffix(image, ":latest") {
			problems = append(problems, "container "+c.Name+": image uses :latest tag")
		}
		if !hasApprovedRegistry(image) {
			problems = append(problems, "container "+c.Name+": image not from an approved registry")
		}
		if !strings.Contains(image, "@sha256:") {
			problems = append(problems, "container "+c.Name+": image not pinned with a digest")
		}
	}
	return problems
}

func hasApprovedRegistry(image string) bool {
	for _, prefix := range ApprovedRegistries {
		if strings.HasPrefix(image, prefix) {
			return true
		}
	}
	return false
}

func checkNaming(m Manifest) []string {
	var problems []string
	for _, label := range RequiredLabels {
		if _, ok := m.Metadata.Labels[label]; !ok {
			problems = append(problems, "missing required label "+label)
		}
	}
	if !namePattern.MatchString(m.Metadata.Name) {
		problems = append(problems, "name "+m.Metadata.Name+" does not follow the team-app-env convention")
	}
	return problems
}

func checkObservability(m Manifest) []string {
	var problems []string
	for _, key := range []string{"prometheus.io/scrape", "prometheus.io/port"} {
		if _, ok := m.Metadata.Annotations[key]; !ok {
			problems = append(problems, "missing "+key+" annotation")
		}
	}
	return problems
}

func checkProbes(m Manifest) []string {
	var problems []string
	for _, c := range m.containers() {
		if len(c.LivenessProbe) == 0 {
			problems = append(problems, "container "+c.Name+": missing liveness probe")
		}
		if len(c.ReadinessProbe) == 0 {
			problems = append(problems, "container "+c.Name+": missing readiness probe")
		}
	}
	return problems
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
