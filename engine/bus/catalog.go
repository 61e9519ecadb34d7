package bus

// Engine-wide channels. The identifiers are stable and must never be reused
// for a different notification.
var (
	GLInitialized    = fixedChannel("7f3d6ad7-6416-4a16-8cbf-5832c79c31c0", "gl-initialized", KindSignal)
	BatchSizeChanged = fixedChannel("4603feed-fe1b-4863-84c9-afdb978cbb63", "batch-size-changed", KindData)

	RenderTexturesNow = fixedChannel("283e1482-4f2b-4853-8f6c-0f7702f0c543", "render-texture-now", KindSignal)
	RenderFontNow     = fixedChannel("301b5d33-2e05-42b0-b2fe-5fc1d90b7a49", "render-font-now", KindSignal)
	RenderRectsNow    = fixedChannel("592295b9-14ea-49e8-ab19-b8a1450e9195", "render-rect-now", KindSignal)
	RenderLinesNow    = fixedChannel("ed278185-b449-41c1-b88b-1c7b4cd4ca92", "render-line-now", KindSignal)

	GetTextureItems = fixedChannel("8740ed6c-3492-4c82-a59f-ee492c0410a2", "get-texture-items", KindPull)
	GetFontItems    = fixedChannel("2ac02500-6890-418f-bb6d-64f2287a9e18", "get-font-items", KindPull)
	GetRectItems    = fixedChannel("10b33b3c-922e-449e-a168-d3390896a12d", "get-rect-items", KindPull)
	GetLineItems    = fixedChannel("6e0c8c74-7919-4d6f-b87f-32d75f011af1", "get-line-items", KindPull)

	EmptyBatch         = fixedChannel("922d31fb-8d8c-42f4-b623-e88c1224e528", "empty-batch", KindSignal)
	BatchHasBegun      = fixedChannel("66ce80a3-2867-4d72-8845-0a3d2776d4ca", "batch-has-begun", KindSignal)
	BatchHasEnded      = fixedChannel("84eed72c-9d2b-4b03-92c1-dd4ae7843f5c", "batch-has-ended", KindSignal)
	SystemShuttingDown = fixedChannel("a6322947-269a-4e35-bb32-b499cedf5b7d", "system-shutting-down", KindSignal)
)
