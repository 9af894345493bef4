package imageuris

// Exported aliases for testing internal functions from
// the imageuris_test package.

// FormatTagForTest exposes formatTag.
var FormatTagForTest = formatTag

// FamilyGenerationForTest exposes familyGeneration.
var FamilyGenerationForTest = familyGeneration

// PythonVersionForTest exposes pythonVersion.
var PythonVersionForTest = pythonVersion

// ModelParallelFrameworkForTest exposes modelParallelFramework.
var ModelParallelFrameworkForTest = modelParallelFramework
