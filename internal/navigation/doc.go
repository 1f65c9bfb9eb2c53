// Package navigation implements breadcrumb navigation over the provider registry.
//
// The [Controller] owns the breadcrumb [Stack] and a [tasks.Manager]; nothing else mutates
// either. Clicks, registry notifications and backend deliveries all arrive as [Event] values
// and are applied one at a time by [Controller.Handle] on a single goroutine, either from a
// [Loop] or from the bubbletea update loop in the ui package.
//
// After every change to the trail the controller calls [RenderSink.SetBreadcrumbs] and then
// [RenderSink.ClearResults] before any result of the new location is appended.
//
// Clicking a leaf hands it to the [services.Player] and never changes the trail.
package navigation
