// Package features drives the Gherkin scenarios under features/*.feature
// against the real core services and adapters (fakes only at the network
// boundary), exercising spec section 8's testable properties end to end.
//
// The teacher's go.mod carries github.com/cucumber/godog but never uses it;
// this package is its first caller, so the TestSuite/InitializeScenario
// wiring below follows godog's own documented API rather than a pattern
// borrowed from the example pack.
package features

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"."},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	fw := &fetchWorld{}
	ow := &outlineWorld{}
	iw := &injectionWorld{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		*fw = fetchWorld{}
		*ow = outlineWorld{}
		*iw = injectionWorld{}
		return c, nil
	})

	// fetch.feature
	ctx.Step(`^a fetch service with a public DNS resolver stubbed to a private address$`,
		fw.aFetchServiceWithAPublicDNSResolverStubbedToAPrivateAddress)
	ctx.Step(`^a fetch service whose responses redirect five times before "([^"]*)"$`,
		fw.aFetchServiceWhoseResponsesRedirectFiveTimesBefore)
	ctx.Step(`^a fetch service whose response at "([^"]*)" is gzip-encoded past the byte budget$`,
		fw.aFetchServiceWhoseResponseAtIsGzipEncodedPastTheByteBudget)
	ctx.Step(`^I fetch "([^"]*)" with default options$`, fw.iFetchWithDefaultOptions)
	ctx.Step(`^I fetch "([^"]*)" with max_redirects (\d+)$`, fw.iFetchWithMaxRedirects)
	ctx.Step(`^I fetch "([^"]*)" with max_bytes (\d+)$`, fw.iFetchWithMaxBytes)
	ctx.Step(`^the fetch fails with error code "([^"]*)"$`, fw.theFetchFailsWithErrorCode)
	ctx.Step(`^no upstream request was made$`, fw.noUpstreamRequestWasMade)

	// robots.feature
	ctx.Step(`^a site whose robots\.txt disallows "([^"]*)" for "([^"]*)" and allows "/" for "\*"$`,
		fw.aSiteWhoseRobotsTxtDisallows)
	ctx.Step(`^I fetch "([^"]*)" as user agent "([^"]*)"$`, fw.iFetchAsUserAgent)
	ctx.Step(`^the fetch succeeds$`, fw.theFetchSucceeds)

	// outline.feature
	ctx.Step(`^the markdown document:$`, ow.theMarkdownDocument)
	ctx.Step(`^I generate the outline for that document$`, ow.iGenerateTheOutlineForThatDocument)
	ctx.Step(`^the outline is exactly:$`, ow.theOutlineIsExactly)

	// injection.feature
	ctx.Step(`^a packet whose content is "([^"]*)"$`, iw.aPacketWhoseContentIs)
	ctx.Step(`^I run injection detection on that packet's content$`, iw.iRunInjectionDetectionOnThatPacketsContent)
	ctx.Step(`^at least one unsafe instruction is detected with a reason mentioning "([^"]*)"$`,
		iw.atLeastOneUnsafeInstructionIsDetectedWithAReasonMentioning)
	ctx.Step(`^a warning of type "([^"]*)" is present$`, iw.aWarningOfTypeIsPresent)
}

// TestMain keeps go test's default -run filtering usable alongside godog's
// own suite runner.
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
