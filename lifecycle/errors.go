package lifecycle

import "errors"

// ErrStopRequested is the cancellation cause reported when RequestStop was
// called before a pending startup chain reached its next sequencing point
// (spec.md §4.12, §5).
var ErrStopRequested = errors.New("lifecycle: stop requested")
